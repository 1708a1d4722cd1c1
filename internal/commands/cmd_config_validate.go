package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/proofer/internal/core/config"
	"github.com/hay-kot/proofer/internal/printer"
)

// ValidationResult is the outcome of config validate.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Errors   []string                   `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "proofer config validate [options]",
				Description: "Validates the configuration file, checking value ranges, language tags, and file paths.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	result := Validate(cmd.flags.Config, cmd.flags.ConfigPath)

	if cmd.format == "json" {
		enc := json.NewEncoder(c.Root().Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		outputText(printer.Ctx(ctx), result)
	}

	if !result.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

// Validate runs the deep validation and collects warnings.
func Validate(cfg *config.Config, configPath string) ValidationResult {
	result := ValidationResult{Valid: true, Warnings: cfg.Warnings()}

	err := cfg.ValidateDeep(configPath)
	if err == nil {
		return result
	}

	result.Valid = false
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", fe.Field, fe.Err))
		}
	} else {
		result.Errors = append(result.Errors, err.Error())
	}
	return result
}

func outputText(p *printer.Printer, result ValidationResult) {
	for _, warn := range result.Warnings {
		p.Warnf("%s.%s: %s", warn.Category, warn.Item, warn.Message)
	}

	for _, err := range result.Errors {
		p.Errorf("%s", err)
	}

	p.Printf("")
	if result.Valid {
		p.Successf("Configuration is valid")
		return
	}
	p.Errorf("%d error(s) found", len(result.Errors))
}
