package commands

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/proofer/internal/checker"
	"github.com/hay-kot/proofer/internal/core/edit"
	"github.com/hay-kot/proofer/internal/core/styles"
	"github.com/hay-kot/proofer/internal/core/validate"
	"github.com/hay-kot/proofer/internal/printer"
	"github.com/hay-kot/proofer/internal/proofer"
	"github.com/hay-kot/proofer/pkg/iojson"
)

// FixPair is one replacement applied by fix.
type FixPair struct {
	Word        string `json:"word"`
	Replacement string `json:"replacement"`
	RuleID      string `json:"rule_id,omitempty"`
}

// FixInput is the JSON document read by fix --file.
type FixInput struct {
	Pairs []FixPair `json:"pairs"`
}

// Validate checks every pair.
func (in FixInput) Validate() error {
	if len(in.Pairs) == 0 {
		return criterio.NewFieldErrors("pairs", fmt.Errorf("at least one pair is required"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, p := range in.Pairs {
		field := fmt.Sprintf("pairs[%d]", i)
		if strings.TrimSpace(p.Word) == "" {
			errs = errs.Append(field+".word", fmt.Errorf("word is required"))
		}
		if p.Replacement == "" {
			errs = errs.Append(field+".replacement", fmt.Errorf("replacement is required"))
		}
		if p.Word != "" && p.Word == p.Replacement {
			errs = errs.Append(field+".replacement", fmt.Errorf("replacement equals word"))
		}
		if p.RuleID != "" {
			if err := validate.RuleID(p.RuleID); err != nil {
				errs = errs.Append(field+".rule_id", err)
			}
		}
	}
	return errs.ToError()
}

type FixCmd struct {
	flags *Flags
	input iojson.FileReader[FixInput]

	// flags
	ruleID   string
	remember bool
	recorded bool
	dryRun   bool

	// form values
	word        string
	replacement string
}

// NewFixCmd creates a new fix command
func NewFixCmd(flags *Flags) *FixCmd {
	return &FixCmd{flags: flags}
}

// Register adds the fix command to the application
func (cmd *FixCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "fix",
		Usage:     "Replace a flagged word everywhere in a file",
		UsageText: "proofer fix [options] FILE [WORD REPLACEMENT]",
		Description: `Replaces every occurrence of WORD that the checker flagged under --rule
(the spelling rule by default) and saves the file.

Without WORD and REPLACEMENT an interactive form asks for them. Use --file
(or pipe JSON on stdin) to apply several pairs:

  {"pairs": [{"word": "teh", "replacement": "the"}]}

Use --recorded to apply the auto-corrections remembered from earlier runs.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "rule",
				Usage:       "rule ID the word must be flagged by",
				Value:       checker.RuleSpelling,
				Destination: &cmd.ruleID,
			},
			&cli.BoolFlag{
				Name:        "remember",
				Usage:       "record the pair as an auto-correction",
				Destination: &cmd.remember,
			},
			&cli.BoolFlag{
				Name:        "recorded",
				Usage:       "apply recorded auto-corrections for the default language",
				Destination: &cmd.recorded,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "report changes without saving",
				Destination: &cmd.dryRun,
			},
			cmd.input.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *FixCmd) run(ctx context.Context, c *cli.Command) error {
	args := c.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("a file is required")
	}
	if err := validate.RuleID(cmd.ruleID); err != nil {
		return fmt.Errorf("invalid --rule: %w", err)
	}

	pairs, err := cmd.pairs(args[1:])
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}
	if len(pairs) == 0 {
		printer.Ctx(ctx).Infof("Nothing to apply")
		return nil
	}

	return cmd.apply(ctx, args[0], pairs)
}

// pairs resolves the replacements from arguments, the recorded
// corrections, the JSON input or the form, in that order.
func (cmd *FixCmd) pairs(args []string) ([]FixPair, error) {
	switch {
	case len(args) == 2:
		in := FixInput{Pairs: []FixPair{{Word: args[0], Replacement: args[1]}}}
		return in.Pairs, in.Validate()
	case len(args) != 0:
		return nil, fmt.Errorf("expected WORD and REPLACEMENT, got %d argument(s)", len(args))
	case cmd.recorded:
		corrections := cmd.flags.App.Prefs.Corrections(cmd.flags.Config.Check.DefaultLanguage)
		words := make([]string, 0, len(corrections))
		for w := range corrections {
			words = append(words, w)
		}
		slices.Sort(words)

		pairs := make([]FixPair, 0, len(words))
		for _, w := range words {
			pairs = append(pairs, FixPair{Word: w, Replacement: corrections[w]})
		}
		return pairs, nil
	case cmd.input.Provided():
		in, err := cmd.input.Read()
		if err != nil {
			return nil, err
		}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		return in.Pairs, nil
	}

	if err := cmd.runForm(); err != nil {
		return nil, err
	}
	return []FixPair{{Word: cmd.word, Replacement: cmd.replacement}}, nil
}

func (cmd *FixCmd) apply(ctx context.Context, path string, pairs []FixPair) error {
	p := printer.Ctx(ctx)

	ws, err := cmd.flags.App.Open(path)
	if err != nil {
		return err
	}
	defer ws.Close()

	changed := 0
	for _, pair := range pairs {
		// edits invalidate the units they touch
		if err := ws.CheckAll(ctx); err != nil {
			return fmt.Errorf("check %s: %w", path, err)
		}

		rule := pair.RuleID
		if rule == "" {
			rule = cmd.ruleID
		}

		var res proofer.BulkResult
		if cmd.remember {
			res, err = ws.Session.AutoCorrect(ctx, pair.Word, rule, pair.Replacement)
		} else {
			res, err = ws.Session.ApplyBulkEdit(ctx, pair.Word, rule, pair.Replacement)
		}
		if err != nil && !errors.Is(err, edit.ErrNoChange) {
			return fmt.Errorf("replace %q: %w", pair.Word, err)
		}

		changed += res.Units
		p.Printf("%s → %s: %d unit(s)", pair.Word, pair.Replacement, res.Units)
		if res.Pending > 0 {
			p.Warnf("%d unit(s) were not checked and may still contain %q", res.Pending, pair.Word)
		}
	}

	if changed == 0 {
		p.Infof("No units changed")
		return nil
	}
	if cmd.dryRun {
		p.Infof("Dry run: %d unit(s) would change", changed)
		return nil
	}

	if err := ws.Doc.Save(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	p.Success("Saved", fmt.Sprintf("%s (%d unit(s) changed)", path, changed))
	return nil
}

func (cmd *FixCmd) runForm() error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Word").
				Description("Flagged word to replace").
				Validate(required("word")).
				Value(&cmd.word),
			huh.NewInput().
				Title("Replacement").
				Validate(required("replacement")).
				Value(&cmd.replacement),
		),
	).WithTheme(styles.FormTheme()).Run()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
