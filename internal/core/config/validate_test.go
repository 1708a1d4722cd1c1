package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Check.Languages = []string{"en-US", "de-DE", "zxx"}

	dict := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(dict, []byte("proofer\n"), 0o644))
	cfg.Checker.Dictionary = dict

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_InvalidLanguages(t *testing.T) {
	cfg := validConfig(t)
	cfg.Check.DefaultLanguage = "english"
	cfg.Check.Languages = []string{"en-US", "de_DE"}

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 2)
	assert.Equal(t, "check.default_language", fieldErrs[0].Field)
	assert.Equal(t, "check.languages[1]", fieldErrs[1].Field)
}

func TestValidateDeep_MissingDictionary(t *testing.T) {
	cfg := validConfig(t)
	cfg.Checker.Dictionary = filepath.Join(t.TempDir(), "missing.txt")

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 1)
	assert.Equal(t, "checker.dictionary", fieldErrs[0].Field)
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_StructuralErrorFirst(t *testing.T) {
	cfg := validConfig(t)
	cfg.Undo.Capacity = 0

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undo.capacity")
}

func TestWarnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		items  []string
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{
			name:   "long poll",
			mutate: func(c *Config) { c.Check.PollDelay = time.Second },
			items:  []string{"poll_delay"},
		},
		{
			name:   "default language not checked",
			mutate: func(c *Config) { c.Check.Languages = []string{"de-DE"} },
			items:  []string{"default_language"},
		},
		{
			name: "shapes with spelling",
			mutate: func(c *Config) {
				c.Check.CheckType = CheckTypeSpelling
				c.Check.IncludeShapes = true
			},
			items: []string{"include_shapes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			var items []string
			for _, w := range cfg.Warnings() {
				items = append(items, w.Item)
			}
			assert.Equal(t, tt.items, items)
		})
	}
}
