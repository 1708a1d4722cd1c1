package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/proofer/internal/core/logging"
	"github.com/hay-kot/proofer/internal/core/navigate"
	"github.com/hay-kot/proofer/internal/data/textdoc"
	"github.com/hay-kot/proofer/internal/printer"
	"github.com/hay-kot/proofer/internal/tui"
)

type CheckCmd struct {
	flags *Flags

	// flags
	checkType string
	selection string
	noWatch   bool
}

// NewCheckCmd creates a new check command
func NewCheckCmd(flags *Flags) *CheckCmd {
	return &CheckCmd{flags: flags}
}

// Register adds the check command to the application
func (cmd *CheckCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "check",
		Usage:     "Step through the issues of a file interactively",
		UsageText: "proofer check [options] FILE",
		Description: `Opens the interactive check view. Issues are shown one at a time in
document order; accept a suggestion, edit the text, ignore, or skip.

Use --select UNIT:START:END to check only part of the document. Offsets are
characters counted from the start of UNIT.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Usage:       "issue types to report (all, spelling, grammar); overrides check.check_type",
				Destination: &cmd.checkType,
			},
			&cli.StringFlag{
				Name:        "select",
				Usage:       "limit the check to UNIT:START:END",
				Destination: &cmd.selection,
			},
			&cli.BoolFlag{
				Name:        "no-watch",
				Usage:       "do not watch the file for external changes",
				Destination: &cmd.noWatch,
			},
		},
		Action: cmd.run,
	})

	return app
}

// Run runs the check command with default options. The root command uses
// it for 'proofer FILE'.
func (cmd *CheckCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *CheckCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one file")
	}
	path := c.Args().First()

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("check needs a terminal; use 'proofer list %s' for plain output", path)
	}

	if cmd.checkType != "" {
		if !navigate.CheckType(cmd.checkType).IsValid() {
			return fmt.Errorf("invalid --type %q (must be all, spelling, or grammar)", cmd.checkType)
		}
		cmd.flags.Config.Check.CheckType = cmd.checkType
	}

	ws, err := cmd.flags.App.Open(path)
	if err != nil {
		return err
	}
	defer ws.Close()

	if cmd.selection != "" {
		unit, start, end, err := parseSelection(cmd.selection)
		if err != nil {
			return err
		}
		if err := ws.Session.SelectRange(unit, start, end); err != nil {
			return err
		}
	}

	p := printer.Ctx(ctx)
	p.Defer()
	defer func() { _ = p.Flush() }()

	for _, w := range cmd.flags.Config.Warnings() {
		p.Warnf("config %s: %s", w.Item, w.Message)
	}

	var changes <-chan struct{}
	if !cmd.noWatch {
		watcher, err := textdoc.NewWatcher(path, logging.Component("watch"))
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("file watcher unavailable")
		} else {
			defer func() { _ = watcher.Close() }()
			changes = watcher.Events()
		}
	}

	ctx = ws.Session.Context(ctx)
	ws.Start(ctx)

	m := tui.New(ctx, tui.Options{
		Workspace: ws,
		Changes:   changes,
		Logger:    logging.Component("tui"),
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	if model, ok := final.(tui.Model); ok && model.Lost() {
		p.Errorf("%s was closed or replaced; the session ended", path)
		return cli.Exit("", 1)
	}
	if ws.Doc.Dirty() {
		p.Warnf("Unsaved changes to %s were discarded", path)
	}
	return nil
}

// parseSelection parses UNIT:START:END.
func parseSelection(s string) (unit, start, end int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid --select %q: want UNIT:START:END", s)
	}

	vals := make([]int, 3)
	for i, part := range parts {
		vals[i], err = strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid --select %q: %w", s, err)
		}
	}
	if vals[1] < 0 || vals[2] <= vals[1] {
		return 0, 0, 0, fmt.Errorf("invalid --select %q: END must be greater than START", s)
	}
	return vals[0], vals[1], vals[2], nil
}
