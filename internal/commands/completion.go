package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// DeactivatedRuleCompleter returns a ShellCompleteFunc that suggests the
// deactivated rule IDs of the language selected by --lang.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func DeactivatedRuleCompleter(flags *Flags, lang *string) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if flags.App == nil {
			return
		}

		w := cmd.Root().Writer
		for _, id := range flags.App.Rules.Deactivated(langOrDefault(flags, *lang)) {
			_, _ = fmt.Fprintln(w, id)
		}
	}
}

func langOrDefault(flags *Flags, lang string) string {
	if lang != "" {
		return lang
	}
	return flags.Config.Check.DefaultLanguage
}
