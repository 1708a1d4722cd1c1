package stores

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/proofer/internal/core/check"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ check.RuleStore = (*PrefsStore)(nil)
	_ check.WordStore = (*PrefsStore)(nil)
)

func newPrefs(t *testing.T) (*PrefsStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	s, err := NewPrefsStore(path)
	require.NoError(t, err)
	return s, path
}

func TestPrefsStore_MissingFile(t *testing.T) {
	s, path := newPrefs(t)

	assert.Equal(t, path, s.Path())
	assert.Empty(t, s.Words())
	assert.Empty(t, s.Deactivated())
	assert.Empty(t, s.Corrections("en-US"))
}

func TestPrefsStore_RoundTrip(t *testing.T) {
	s, path := newPrefs(t)

	require.NoError(t, s.SaveWords([]string{"zeta", "alpha"}))
	require.NoError(t, s.SaveDeactivated(map[string][]string{
		"en-US": {"WHITESPACE_RULE"},
		"de-DE": {},
	}))
	require.NoError(t, s.AddCorrection("teh", "the", "en-US"))
	require.NoError(t, s.AddCorrection("same", "same", "en-US"))

	reopened, err := NewPrefsStore(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "zeta"}, reopened.Words())
	assert.Equal(t, map[string][]string{"en-US": {"WHITESPACE_RULE"}}, reopened.Deactivated())
	assert.Equal(t, map[string]string{"teh": "the"}, reopened.Corrections("en-US"))
	assert.Empty(t, reopened.Corrections("de-DE"))
}

func TestPrefsStore_WithRuleState(t *testing.T) {
	s, path := newPrefs(t)

	rs := check.NewRuleState(s.Deactivated(), s)
	require.NoError(t, rs.Deactivate("TOO_LONG_SENTENCE", "en-US"))

	dict := check.NewDictionary(s.Words(), s)
	require.NoError(t, dict.AddWord("proofer"))

	reopened, err := NewPrefsStore(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"TOO_LONG_SENTENCE"}, reopened.Deactivated()["en-US"])
	assert.Equal(t, []string{"proofer"}, reopened.Words())
}

func TestPrefsStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("words = [unterminated"), 0o644))

	_, err := NewPrefsStore(path)
	require.Error(t, err)
}

func TestPrefsStore_CopiesAreIndependent(t *testing.T) {
	s, _ := newPrefs(t)
	require.NoError(t, s.SaveWords([]string{"a"}))

	words := s.Words()
	words[0] = "changed"
	assert.Equal(t, []string{"a"}, s.Words())
}
