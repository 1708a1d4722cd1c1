package commands

import (
	"context"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/proofer/internal/core/validate"
	"github.com/hay-kot/proofer/internal/printer"
	"github.com/hay-kot/proofer/pkg/iojson"
)

// RuleInfo is one deactivated rule in rules list output.
type RuleInfo struct {
	Language string `json:"language"`
	RuleID   string `json:"rule_id"`
}

type RulesCmd struct {
	flags *Flags

	// flags
	lang       string
	jsonOutput bool
}

// NewRulesCmd creates a new rules command
func NewRulesCmd(flags *Flags) *RulesCmd {
	return &RulesCmd{flags: flags}
}

// Register adds the rules command to the application
func (cmd *RulesCmd) Register(app *cli.Command) *cli.Command {
	langFlag := &cli.StringFlag{
		Name:        "lang",
		Aliases:     []string{"l"},
		Usage:       "language tag (defaults to check.default_language)",
		Destination: &cmd.lang,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:  "rules",
		Usage: "Manage persistently deactivated rules",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List deactivated rules",
				UsageText: "proofer rules list [--lang TAG] [--json]",
				Flags: []cli.Flag{
					langFlag,
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:          "activate",
				Usage:         "Re-enable a deactivated rule",
				UsageText:     "proofer rules activate [--lang TAG] RULE_ID...",
				Flags:         []cli.Flag{langFlag},
				ShellComplete: DeactivatedRuleCompleter(cmd.flags, &cmd.lang),
				Action:        cmd.runActivate,
			},
			{
				Name:      "deactivate",
				Usage:     "Disable a rule for a language",
				UsageText: "proofer rules deactivate [--lang TAG] RULE_ID...",
				Flags:     []cli.Flag{langFlag},
				Action:    cmd.runDeactivate,
			},
		},
	})

	return app
}

func (cmd *RulesCmd) runList(ctx context.Context, c *cli.Command) error {
	var rules []RuleInfo
	if cmd.lang != "" {
		if err := validate.LanguageTag(cmd.lang); err != nil {
			return err
		}
		for _, id := range cmd.flags.App.Rules.Deactivated(cmd.lang) {
			rules = append(rules, RuleInfo{Language: cmd.lang, RuleID: id})
		}
	} else {
		all := cmd.flags.App.Prefs.Deactivated()
		langs := make([]string, 0, len(all))
		for lang := range all {
			langs = append(langs, lang)
		}
		slices.Sort(langs)
		for _, lang := range langs {
			for _, id := range cmd.flags.App.Rules.Deactivated(lang) {
				rules = append(rules, RuleInfo{Language: lang, RuleID: id})
			}
		}
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range rules {
			if err := iojson.WriteLine(out, r); err != nil {
				return fmt.Errorf("encode rule: %w", err)
			}
		}
		return nil
	}

	if len(rules) == 0 {
		printer.Ctx(ctx).Infof("No deactivated rules")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "LANGUAGE\tRULE")
	for _, r := range rules {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", r.Language, r.RuleID)
	}
	return w.Flush()
}

func (cmd *RulesCmd) runActivate(ctx context.Context, c *cli.Command) error {
	lang, ids, err := cmd.args(c)
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	for _, id := range ids {
		if !slices.Contains(cmd.flags.App.Rules.Deactivated(lang), id) {
			p.Warnf("%s is not deactivated for %s", id, lang)
			continue
		}
		if err := cmd.flags.App.Rules.Activate(id, lang); err != nil {
			return err
		}
		p.Successf("Activated %s for %s", id, lang)
	}
	return nil
}

func (cmd *RulesCmd) runDeactivate(ctx context.Context, c *cli.Command) error {
	lang, ids, err := cmd.args(c)
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	for _, id := range ids {
		if err := cmd.flags.App.Rules.Deactivate(id, lang); err != nil {
			return err
		}
		p.Successf("Deactivated %s for %s", id, lang)
	}
	return nil
}

func (cmd *RulesCmd) args(c *cli.Command) (string, []string, error) {
	lang := langOrDefault(cmd.flags, cmd.lang)
	if err := validate.LanguageTag(lang); err != nil {
		return "", nil, err
	}

	ids := c.Args().Slice()
	if len(ids) == 0 {
		return "", nil, fmt.Errorf("at least one rule ID is required")
	}
	for _, id := range ids {
		if err := validate.RuleID(id); err != nil {
			return "", nil, fmt.Errorf("%s: %w", id, err)
		}
	}
	return lang, ids, nil
}
