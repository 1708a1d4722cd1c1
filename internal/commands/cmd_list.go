package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/hay-kot/proofer/internal/core/navigate"
	"github.com/hay-kot/proofer/internal/core/styles"
	"github.com/hay-kot/proofer/internal/printer"
	"github.com/hay-kot/proofer/pkg/iojson"
)

// IssueInfo is one issue in list output.
type IssueInfo struct {
	File        string   `json:"file"`
	Unit        int      `json:"unit"`
	Kind        string   `json:"kind"`
	Ordinal     int      `json:"ordinal"`
	Language    string   `json:"language"`
	Start       int      `json:"start"`
	Length      int      `json:"length"`
	Text        string   `json:"text"`
	RuleID      string   `json:"rule_id"`
	Type        string   `json:"type"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	URL         string   `json:"url,omitempty"`
}

type ListCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
	exitCode   bool
	checkType  string
}

// NewListCmd creates a new list command
func NewListCmd(flags *Flags) *ListCmd {
	return &ListCmd{flags: flags}
}

// Register adds the list command to the application
func (cmd *ListCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "Print every issue without interaction",
		UsageText: "proofer list [--json] [--type TYPE] FILE|GLOB...",
		Description: `Checks each file and prints the issues in document order, walking the
document the same way the interactive check does.

Arguments may be doublestar globs such as 'docs/**/*.md'.
Use --json for one JSON object per issue.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "exit-code",
				Usage:       "exit with status 1 when any issue is found",
				Destination: &cmd.exitCode,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "issue types to report (all, spelling, grammar); overrides check.check_type",
				Destination: &cmd.checkType,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ListCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one file is required")
	}
	if cmd.checkType != "" {
		if !navigate.CheckType(cmd.checkType).IsValid() {
			return fmt.Errorf("invalid --type %q (must be all, spelling, or grammar)", cmd.checkType)
		}
		cmd.flags.Config.Check.CheckType = cmd.checkType
	}

	paths, err := expandPaths(c.Args().Slice())
	if err != nil {
		return err
	}

	out := c.Root().Writer
	color := isTerminal(out)

	var w *tabwriter.Writer
	if !cmd.jsonOutput {
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "FILE\tLOCATION\tRULE\tTEXT\tMESSAGE\tSUGGESTIONS")
	}

	total := 0
	for _, path := range paths {
		issues, err := cmd.collect(ctx, path)
		if err != nil {
			return err
		}
		total += len(issues)

		for _, is := range issues {
			if cmd.jsonOutput {
				if err := iojson.WriteLine(out, is); err != nil {
					return fmt.Errorf("encode issue: %w", err)
				}
				continue
			}

			text := is.Text
			if color {
				text = styles.ErrorStyle.Render(text)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s %d\t%s\t%s\t%s\t%s\n",
				is.File, is.Kind, is.Ordinal+1, is.RuleID, text, is.Message, strings.Join(is.Suggestions, ", "))
		}
	}

	if w != nil {
		_ = w.Flush()
		p := printer.Ctx(ctx)
		if total == 0 {
			p.Successf("No issues found in %d file(s)", len(paths))
		} else {
			p.Infof("%d issue(s) in %d file(s)", total, len(paths))
		}
	}

	if cmd.exitCode && total > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// collect walks path from the first unit until the scan is exhausted.
func (cmd *ListCmd) collect(ctx context.Context, path string) ([]IssueInfo, error) {
	ws, err := cmd.flags.App.Open(path)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	if err := ws.CheckAll(ctx); err != nil {
		return nil, fmt.Errorf("check %s: %w", path, err)
	}

	var issues []IssueInfo
	out, err := ws.Session.FindNext(ctx, true)
	for err == nil && out.State == navigate.StateFound {
		u, _ := ws.Session.Unit(out.Unit)
		issues = append(issues, IssueInfo{
			File:        path,
			Unit:        out.Unit,
			Kind:        out.Locator.Kind.String(),
			Ordinal:     out.Locator.Ordinal,
			Language:    u.Language,
			Start:       out.Issue.Start,
			Length:      out.Issue.Length,
			Text:        document.Slice(u.Text, out.Issue.Start, out.Issue.End()),
			RuleID:      out.Issue.RuleID,
			Type:        out.Issue.Type.String(),
			Message:     out.Issue.Message,
			Suggestions: out.Issue.Suggestions,
			URL:         out.Issue.URL,
		})
		out, err = ws.Session.Skip(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	return issues, nil
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
