// Package config handles configuration loading and validation for proofer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Check types accepted by check.check_type.
const (
	CheckTypeAll      = "all"
	CheckTypeSpelling = "spelling"
	CheckTypeGrammar  = "grammar"
)

// Built-in TUI themes.
const (
	ThemeDefault = "default"
	ThemeLight   = "light"
	ThemeMono    = "mono"
)

// Config holds the application configuration.
type Config struct {
	Check   CheckConfig   `yaml:"check"`
	Undo    UndoConfig    `yaml:"undo"`
	Checker CheckerConfig `yaml:"checker"`
	TUI     TUIConfig     `yaml:"tui"`
	DataDir string        `yaml:"-"` // set by caller, not from config file
}

// CheckConfig controls how the navigator walks the document.
type CheckConfig struct {
	PollAttempts    int           `yaml:"poll_attempts"`    // cache polls per merge before reporting pending
	PollDelay       time.Duration `yaml:"poll_delay"`       // wait between polls and between passes
	MaxPasses       int           `yaml:"max_passes"`       // scan passes while results are pending
	CheckType       string        `yaml:"check_type"`       // all, spelling or grammar
	IncludeShapes   bool          `yaml:"include_shapes"`   // report grammar issues in shapes and frames
	Languages       []string      `yaml:"languages"`        // empty checks every language
	DefaultLanguage string        `yaml:"default_language"` // used for units tagged zxx
}

// UndoConfig controls the undo log.
type UndoConfig struct {
	Capacity int `yaml:"capacity"`
}

// CheckerConfig controls the built-in background checkers.
type CheckerConfig struct {
	Workers          int    `yaml:"workers"`
	Dictionary       string `yaml:"dictionary"` // optional word list, one word per line
	MinWordLength    int    `yaml:"min_word_length"`
	MaxSentenceWords int    `yaml:"max_sentence_words"`
}

// TUIConfig holds interactive UI settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Check: CheckConfig{
			PollAttempts:    10,
			PollDelay:       50 * time.Millisecond,
			MaxPasses:       20,
			CheckType:       CheckTypeAll,
			DefaultLanguage: "en-US",
		},
		Undo: UndoConfig{
			Capacity: 20,
		},
		Checker: CheckerConfig{
			Workers:          2,
			MinWordLength:    2,
			MaxSentenceWords: 40,
		},
		TUI: TUIConfig{
			Theme: ThemeDefault,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir

			if cfg.Checker.Dictionary != "" && !filepath.IsAbs(cfg.Checker.Dictionary) {
				cfg.Checker.Dictionary = filepath.Join(filepath.Dir(configPath), cfg.Checker.Dictionary)
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Check.PollAttempts == 0 {
		c.Check.PollAttempts = defaults.Check.PollAttempts
	}
	if c.Check.PollDelay == 0 {
		c.Check.PollDelay = defaults.Check.PollDelay
	}
	if c.Check.MaxPasses == 0 {
		c.Check.MaxPasses = defaults.Check.MaxPasses
	}
	if c.Check.CheckType == "" {
		c.Check.CheckType = defaults.Check.CheckType
	}
	if c.Check.DefaultLanguage == "" {
		c.Check.DefaultLanguage = defaults.Check.DefaultLanguage
	}
	if c.Undo.Capacity == 0 {
		c.Undo.Capacity = defaults.Undo.Capacity
	}
	if c.Checker.Workers == 0 {
		c.Checker.Workers = defaults.Checker.Workers
	}
	if c.Checker.MaxSentenceWords == 0 {
		c.Checker.MaxSentenceWords = defaults.Checker.MaxSentenceWords
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Check.PollAttempts < 1 {
		return fmt.Errorf("check.poll_attempts must be at least 1")
	}

	if c.Check.PollDelay < 0 {
		return fmt.Errorf("check.poll_delay cannot be negative")
	}

	if c.Check.MaxPasses < 1 {
		return fmt.Errorf("check.max_passes must be at least 1")
	}

	if !isValidCheckType(c.Check.CheckType) {
		return fmt.Errorf("check.check_type %q is invalid (all, spelling, grammar)", c.Check.CheckType)
	}

	if c.Undo.Capacity < 1 {
		return fmt.Errorf("undo.capacity must be at least 1")
	}

	if c.Checker.Workers < 1 {
		return fmt.Errorf("checker.workers must be at least 1")
	}

	if c.Checker.MinWordLength < 0 {
		return fmt.Errorf("checker.min_word_length cannot be negative")
	}

	if c.Checker.MaxSentenceWords < 1 {
		return fmt.Errorf("checker.max_sentence_words must be at least 1")
	}

	if !IsValidTheme(c.TUI.Theme) {
		return fmt.Errorf("tui.theme %q is invalid (default, light, mono)", c.TUI.Theme)
	}

	return nil
}

// PrefsFile returns the path to the preferences file holding deactivated
// rules, the user dictionary and auto-correct entries.
func (c *Config) PrefsFile() string {
	return filepath.Join(c.DataDir, "prefs.toml")
}

// IsValidTheme reports whether name is a built-in theme.
func IsValidTheme(name string) bool {
	switch name {
	case ThemeDefault, ThemeLight, ThemeMono:
		return true
	default:
		return false
	}
}

func isValidCheckType(t string) bool {
	switch t {
	case CheckTypeAll, CheckTypeSpelling, CheckTypeGrammar:
		return true
	default:
		return false
	}
}
