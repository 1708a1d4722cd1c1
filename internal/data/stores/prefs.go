package stores

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// PrefsFile is the on-disk layout of the user's proofreading preferences.
type PrefsFile struct {
	// Deactivated maps a language tag to rules switched off for it.
	Deactivated map[string][]string `toml:"deactivated"`
	// Words is the user dictionary.
	Words []string `toml:"words"`
	// AutoCorrect maps a language tag to word replacements.
	AutoCorrect map[string]map[string]string `toml:"autocorrect"`
}

// PrefsStore persists deactivated rules, the user dictionary and
// auto-correct entries to a single TOML file.
type PrefsStore struct {
	path string

	mu    sync.Mutex
	prefs PrefsFile
}

// NewPrefsStore opens the preferences file at path. A missing file is not an
// error; it is created on the first save.
func NewPrefsStore(path string) (*PrefsStore, error) {
	s := &PrefsStore{path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PrefsStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read preferences: %w", err)
	}

	if err := toml.Unmarshal(data, &s.prefs); err != nil {
		return fmt.Errorf("parse preferences %s: %w", s.path, err)
	}
	return nil
}

// Path returns the preferences file location.
func (s *PrefsStore) Path() string {
	return s.path
}

// Deactivated returns a copy of the persisted deactivated rules.
func (s *PrefsStore) Deactivated() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]string, len(s.prefs.Deactivated))
	for lang, ids := range s.prefs.Deactivated {
		out[lang] = append([]string(nil), ids...)
	}
	return out
}

// Words returns a copy of the user dictionary.
func (s *PrefsStore) Words() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prefs.Words...)
}

// Corrections returns the auto-correct entries for lang.
func (s *PrefsStore) Corrections(lang string) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.prefs.AutoCorrect[lang])
}

// SaveDeactivated replaces the deactivated rules and writes the file.
func (s *PrefsStore) SaveDeactivated(rules map[string][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.Deactivated = make(map[string][]string, len(rules))
	for lang, ids := range rules {
		if len(ids) == 0 {
			continue
		}
		s.prefs.Deactivated[lang] = append([]string(nil), ids...)
	}
	return s.save()
}

// SaveWords replaces the user dictionary and writes the file.
func (s *PrefsStore) SaveWords(words []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs.Words = append([]string(nil), words...)
	sort.Strings(s.prefs.Words)
	return s.save()
}

// AddCorrection records that word should be replaced by replacement in lang.
func (s *PrefsStore) AddCorrection(word, replacement, lang string) error {
	if word == "" || word == replacement {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prefs.AutoCorrect == nil {
		s.prefs.AutoCorrect = make(map[string]map[string]string)
	}
	m, ok := s.prefs.AutoCorrect[lang]
	if !ok {
		m = make(map[string]string)
		s.prefs.AutoCorrect[lang] = m
	}
	m[word] = replacement
	return s.save()
}

func (s *PrefsStore) save() error {
	data, err := toml.Marshal(s.prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
