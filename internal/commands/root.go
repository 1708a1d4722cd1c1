package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

const rootDescription = `proofer walks a document in order and stops at each spelling, grammar or
style issue so you can accept a suggestion, edit the text, or move on.

Run 'proofer FILE' or 'proofer check FILE' for the interactive view.
Run 'proofer list FILE...' for plain output.`

// NewRoot returns the root command with the global flags bound to flags.
// Hooks are left to the caller.
func NewRoot(flags *Flags, version string) *cli.Command {
	return &cli.Command{
		Name:        "proofer",
		Usage:       "Proofread documents one issue at a time",
		UsageText:   "proofer [global options] command [command options]",
		Description: rootDescription,
		Version:     version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("PROOFER_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("PROOFER_LOG_FILE"),
				Value:       DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PROOFER_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("PROOFER_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
	}
}

// RegisterAll adds every sub-command to app. Running app with a file and
// no sub-command opens the check view.
func RegisterAll(app *cli.Command, flags *Flags) *cli.Command {
	checkCmd := NewCheckCmd(flags)

	app = checkCmd.Register(app)
	app = NewListCmd(flags).Register(app)
	app = NewFixCmd(flags).Register(app)
	app = NewRulesCmd(flags).Register(app)
	app = NewConfigValidateCmd(flags).Register(app)

	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() == 0 {
			return fmt.Errorf("no file given. Run 'proofer --help' for usage")
		}
		return checkCmd.Run(ctx, c)
	}

	return app
}
