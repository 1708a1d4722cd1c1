package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/hay-kot/proofer/internal/core/validate"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// language tags and file accessibility. The configPath argument specifies the
// config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateLanguages(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	wait := time.Duration(c.Check.PollAttempts) * c.Check.PollDelay
	if wait > 5*time.Second {
		warnings = append(warnings, ValidationWarning{
			Category: "Check",
			Item:     "poll_delay",
			Message:  fmt.Sprintf("a single merge may wait up to %s for pending results", wait),
		})
	}

	if len(c.Check.Languages) > 0 && !slices.Contains(c.Check.Languages, c.Check.DefaultLanguage) {
		warnings = append(warnings, ValidationWarning{
			Category: "Check",
			Item:     "default_language",
			Message:  fmt.Sprintf("%s is not in languages; units without a language are skipped", c.Check.DefaultLanguage),
		})
	}

	if c.Check.IncludeShapes && c.Check.CheckType == CheckTypeSpelling {
		warnings = append(warnings, ValidationWarning{
			Category: "Check",
			Item:     "include_shapes",
			Message:  "has no effect when check_type is spelling",
		})
	}

	return warnings
}

// validateFileAccess checks config file, data directory, and dictionary file.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
		criterio.Run("checker.dictionary", c.Checker.Dictionary, isReadableFile),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateLanguages() error {
	var errs criterio.FieldErrorsBuilder

	if err := validate.LanguageTag(c.Check.DefaultLanguage); err != nil {
		errs = errs.Append("check.default_language", err)
	}
	for i, lang := range c.Check.Languages {
		if err := validate.LanguageTag(lang); err != nil {
			errs = errs.Append(fmt.Sprintf("check.languages[%d]", i), err)
		}
	}

	return errs.ToError()
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// isReadableFile validates that an optional path points at a readable file.
func isReadableFile(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}
