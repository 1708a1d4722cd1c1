package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/proofer/internal/commands"
	"github.com/hay-kot/proofer/internal/core/config"
	"github.com/hay-kot/proofer/internal/core/logging"
	"github.com/hay-kot/proofer/internal/core/styles"
	"github.com/hay-kot/proofer/internal/data/stores"
	"github.com/hay-kot/proofer/internal/printer"
	"github.com/hay-kot/proofer/internal/proofer"
	"github.com/hay-kot/proofer/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() falls back
	// to runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}

	app := commands.NewRoot(flags, build())
	app.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
		if err != nil {
			return ctx, fmt.Errorf("setup logger: %w", err)
		}
		log.Logger = logger.Hook(logging.ContextHook{})
		logCloser = closer

		cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
		if err != nil {
			return ctx, fmt.Errorf("load config: %w", err)
		}
		flags.Config = cfg

		// validation ensures the name is known
		styles.SetTheme(cfg.TUI.Theme)

		prefs, err := stores.NewPrefsStore(cfg.PrefsFile())
		if err != nil {
			return ctx, fmt.Errorf("load preferences: %w", err)
		}

		flags.App = proofer.NewApp(cfg, prefs, logging.Component("proofer"))

		ctx = log.Logger.WithContext(ctx)
		ctx = printer.NewContext(ctx, printer.New(os.Stderr))
		return ctx, nil
	}

	app.After = func(ctx context.Context, c *cli.Command) error {
		if logCloser != nil {
			logCloser()
		}
		return nil
	}

	app = commands.RegisterAll(app, flags)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
