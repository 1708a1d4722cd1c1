package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/proofer/internal/checker"
	"github.com/hay-kot/proofer/internal/core/config"
	"github.com/hay-kot/proofer/internal/data/stores"
	"github.com/hay-kot/proofer/internal/printer"
	"github.com/hay-kot/proofer/internal/proofer"
)

type harness struct {
	flags  *Flags
	out    bytes.Buffer
	status bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg, err := config.Load("", t.TempDir())
	require.NoError(t, err)

	prefs, err := stores.NewPrefsStore(cfg.PrefsFile())
	require.NoError(t, err)

	return &harness{flags: &Flags{
		Config: cfg,
		App:    proofer.NewApp(cfg, prefs, zerolog.Nop()),
	}}
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.status.Reset()

	app := &cli.Command{
		Name:           "proofer",
		Writer:         &h.out,
		ErrWriter:      &h.status,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	app = RegisterAll(app, h.flags)

	ctx := printer.NewContext(context.Background(), printer.New(&h.status))
	return app.Run(ctx, append([]string{"proofer"}, args...))
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func decodeLines[T any](t *testing.T, s string) []T {
	t.Helper()
	var out []T
	for _, line := range strings.Split(strings.TrimSpace(s), "\n") {
		if line == "" {
			continue
		}
		var v T
		require.NoError(t, json.Unmarshal([]byte(line), &v))
		out = append(out, v)
	}
	return out
}

func TestRoot_NoFile(t *testing.T) {
	h := newHarness(t)
	require.ErrorContains(t, h.run(t), "no file given")
}

func TestListCmd_JSON(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, t.TempDir(), "notes.md", "This is teh end.\n\nWe recieve it.\n")

	require.NoError(t, h.run(t, "list", "--json", path))

	issues := decodeLines[IssueInfo](t, h.out.String())
	require.Len(t, issues, 2)

	assert.Equal(t, "teh", issues[0].Text)
	assert.Equal(t, 0, issues[0].Unit)
	assert.Equal(t, 8, issues[0].Start)
	assert.Equal(t, checker.RuleSpelling, issues[0].RuleID)
	assert.Equal(t, "the", issues[0].Suggestions[0])

	assert.Equal(t, "recieve", issues[1].Text)
	assert.Equal(t, 1, issues[1].Unit)
	assert.Equal(t, 1, issues[1].Ordinal)
}

func TestListCmd_Glob(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "Read teh notes.\n")
	writeFile(t, dir, "sub/b.md", "Clean text.\n")
	writeFile(t, dir, "sub/c.txt", "Ignored teh.\n")

	require.NoError(t, h.run(t, "list", "--json", filepath.Join(dir, "**", "*.md")))

	issues := decodeLines[IssueInfo](t, h.out.String())
	require.Len(t, issues, 1)
	assert.Equal(t, filepath.Join(dir, "a.md"), issues[0].File)
}

func TestListCmd_Table(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, t.TempDir(), "notes.md", "This is teh end.\n")

	require.NoError(t, h.run(t, "list", path))

	assert.Contains(t, h.out.String(), "FILE")
	assert.Contains(t, h.out.String(), checker.RuleSpelling)
	assert.Contains(t, h.status.String(), "1 issue(s) in 1 file(s)")
}

func TestListCmd_Errors(t *testing.T) {
	h := newHarness(t)

	require.Error(t, h.run(t, "list"))
	require.ErrorContains(t, h.run(t, "list", filepath.Join(t.TempDir(), "missing.md")), "no matching files")

	path := writeFile(t, t.TempDir(), "notes.md", "Fine.\n")
	require.ErrorContains(t, h.run(t, "list", "--type", "style", path), "invalid --type")
}

func TestFixCmd_Args(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, t.TempDir(), "notes.md", "Read teh notes.\n\nThen teh end.\n")

	require.NoError(t, h.run(t, "fix", path, "teh", "the"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Read the notes.\n\nThen the end.\n", string(data))
	assert.Contains(t, h.status.String(), "2 unit(s) changed")
}

func TestFixCmd_DryRun(t *testing.T) {
	h := newHarness(t)
	body := "Read teh notes.\n"
	path := writeFile(t, t.TempDir(), "notes.md", body)

	require.NoError(t, h.run(t, "fix", "--dry-run", path, "teh", "the"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.Contains(t, h.status.String(), "Dry run")
}

func TestFixCmd_UnflaggedWord(t *testing.T) {
	h := newHarness(t)
	body := "Read the notes.\n"
	path := writeFile(t, t.TempDir(), "notes.md", body)

	require.NoError(t, h.run(t, "fix", path, "notes", "books"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, body, string(data), "only flagged words are replaced")
	assert.Contains(t, h.status.String(), "No units changed")
}

func TestFixCmd_File(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.md", "Read teh notes.\n\nWe recieve it.\n")
	input := writeFile(t, dir, "pairs.json", `{"pairs":[{"word":"teh","replacement":"the"},{"word":"recieve","replacement":"receive"}]}`)

	require.NoError(t, h.run(t, "fix", "--file", input, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Read the notes.\n\nWe receive it.\n", string(data))
}

func TestFixCmd_RememberAndRecorded(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	first := writeFile(t, dir, "first.md", "Read teh notes.\n")
	second := writeFile(t, dir, "second.md", "Then teh end.\n")

	require.NoError(t, h.run(t, "fix", "--remember", first, "teh", "the"))
	assert.Equal(t, map[string]string{"teh": "the"}, h.flags.App.Prefs.Corrections("en-US"))

	require.NoError(t, h.run(t, "fix", "--recorded", second))

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "Then the end.\n", string(data))
}

func TestFixCmd_BadArgs(t *testing.T) {
	h := newHarness(t)
	path := writeFile(t, t.TempDir(), "notes.md", "Read teh notes.\n")

	require.ErrorContains(t, h.run(t, "fix", path, "teh"), "expected WORD and REPLACEMENT")
	require.Error(t, h.run(t, "fix", path, "teh", "teh"))
	require.ErrorContains(t, h.run(t, "fix", "--rule", "bad-rule", path, "teh", "the"), "invalid --rule")
}

func TestFixInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   FixInput
		wantErr bool
	}{
		{name: "empty", input: FixInput{}, wantErr: true},
		{name: "missing word", input: FixInput{Pairs: []FixPair{{Replacement: "the"}}}, wantErr: true},
		{name: "missing replacement", input: FixInput{Pairs: []FixPair{{Word: "teh"}}}, wantErr: true},
		{name: "same word", input: FixInput{Pairs: []FixPair{{Word: "teh", Replacement: "teh"}}}, wantErr: true},
		{name: "bad rule", input: FixInput{Pairs: []FixPair{{Word: "teh", Replacement: "the", RuleID: "lower"}}}, wantErr: true},
		{name: "valid", input: FixInput{Pairs: []FixPair{{Word: "teh", Replacement: "the", RuleID: "MORFOLOGIK_RULE"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRulesCmd(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "rules", "deactivate", "WHITESPACE_RULE", "TOO_LONG_SENTENCE"))
	require.NoError(t, h.run(t, "rules", "deactivate", "--lang", "de-DE", "WHITESPACE_RULE"))

	require.NoError(t, h.run(t, "rules", "list", "--json"))
	rules := decodeLines[RuleInfo](t, h.out.String())
	assert.Equal(t, []RuleInfo{
		{Language: "de-DE", RuleID: "WHITESPACE_RULE"},
		{Language: "en-US", RuleID: "TOO_LONG_SENTENCE"},
		{Language: "en-US", RuleID: "WHITESPACE_RULE"},
	}, rules)

	require.NoError(t, h.run(t, "rules", "activate", "WHITESPACE_RULE"))
	assert.Equal(t, []string{"TOO_LONG_SENTENCE"}, h.flags.App.Rules.Deactivated("en-US"))

	reopened, err := stores.NewPrefsStore(h.flags.Config.PrefsFile())
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"de-DE": {"WHITESPACE_RULE"},
		"en-US": {"TOO_LONG_SENTENCE"},
	}, reopened.Deactivated())

	require.NoError(t, h.run(t, "rules", "activate", "WHITESPACE_RULE"))
	assert.Contains(t, h.status.String(), "not deactivated")
}

func TestRulesCmd_InvalidArgs(t *testing.T) {
	h := newHarness(t)

	require.Error(t, h.run(t, "rules", "activate"))
	require.Error(t, h.run(t, "rules", "deactivate", "lower_case"))
	require.Error(t, h.run(t, "rules", "deactivate", "--lang", "not a tag", "WHITESPACE_RULE"))
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	result := Validate(&cfg, "")
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	cfg.Check.Languages = []string{"en-US", "not a tag"}
	result = Validate(&cfg, "")
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "check.languages[1]")
}

func TestConfigValidateCmd_JSON(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run(t, "config", "validate", "--format", "json"))

	var result ValidationResult
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &result))
	assert.True(t, result.Valid)
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    [3]int
		wantErr bool
	}{
		{in: "0:3:10", want: [3]int{0, 3, 10}},
		{in: " 2 : 0 : 1 ", want: [3]int{2, 0, 1}},
		{in: "1:5:5", wantErr: true},
		{in: "1:-1:5", wantErr: true},
		{in: "1:2", wantErr: true},
		{in: "a:1:2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			unit, start, end, err := parseSelection(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, [3]int{unit, start, end})
		})
	}
}
