package commands

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
)

// expandPaths resolves each argument as a file path or a doublestar glob
// ("docs/**/*.md"). Directories are skipped; duplicates keep their first
// position.
func expandPaths(args []string) ([]string, error) {
	var (
		out  []string
		seen = make(map[string]bool)
	)

	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("%s: no matching files", arg)
			}
			matches = []string{arg}
		}

		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	return out, nil
}
