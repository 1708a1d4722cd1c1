package textdoc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hay-kot/proofer/internal/core/document"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# Title here\n" +
	"\n" +
	"First paragraph with teh typo.\n" +
	"It continues here.\n" +
	"\n" +
	"<!-- lang: de-DE -->\n" +
	"Ein deutscher Absatz.\n" +
	"\n" +
	"```go\n" +
	"fmt.Println(\"x\")\n" +
	"\n" +
	"```\n" +
	"\n" +
	"| a | b |\n" +
	"|---|---|\n" +
	"\n" +
	"[^1]: A footnote.\n"

func TestParse(t *testing.T) {
	d, err := Parse("sample", strings.NewReader(sample), "en-US")
	require.NoError(t, err)

	n, err := d.UnitCount()
	require.NoError(t, err)
	require.Equal(t, 6, n)

	tests := []struct {
		unit int
		kind document.Kind
		text string
		lang string
		auto bool
	}{
		{unit: 0, kind: document.KindHeading, text: "Title here", lang: "en-US"},
		{unit: 1, kind: document.KindBody, text: "First paragraph with teh typo.\nIt continues here.", lang: "en-US"},
		{unit: 2, kind: document.KindBody, text: "Ein deutscher Absatz.", lang: "de-DE"},
		{unit: 3, kind: document.KindBody, text: "```go\nfmt.Println(\"x\")\n\n```", lang: "en-US", auto: true},
		{unit: 4, kind: document.KindTableCell, text: "| a | b |\n|---|---|", lang: "en-US"},
		{unit: 5, kind: document.KindFootnote, text: "A footnote.", lang: "en-US"},
	}

	for _, tt := range tests {
		text, err := d.UnitText(tt.unit)
		require.NoError(t, err)
		assert.Equal(t, tt.text, text, "unit %d", tt.unit)

		kind, err := d.Kind(tt.unit)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, kind, "unit %d", tt.unit)

		lang, err := d.UnitLanguage(tt.unit)
		require.NoError(t, err)
		assert.Equal(t, tt.lang, lang, "unit %d", tt.unit)

		auto, err := d.IsAutoGenerated(tt.unit)
		require.NoError(t, err)
		assert.Equal(t, tt.auto, auto, "unit %d", tt.unit)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	d, err := Parse("sample", strings.NewReader(sample), "en-US")
	require.NoError(t, err)

	again, err := Parse("again", strings.NewReader(string(d.Render())), "en-US")
	require.NoError(t, err)
	assert.Equal(t, d.blocks, again.blocks)
}

func TestSaveAndChangedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nteh end\n"), 0o644))

	d, err := Load(path, "en-US")
	require.NoError(t, err)

	changed, err := d.ChangedOnDisk()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, d.SetUnitText(1, 0, 3, "the"))
	require.NoError(t, d.SetUnitLanguage(0, 0, 5, "en-GB"))
	assert.True(t, d.Dirty())

	require.NoError(t, d.Save())
	assert.False(t, d.Dirty())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<!-- lang: en-GB -->\n# Notes\n\nthe end\n", string(data))

	changed, err = d.ChangedOnDisk()
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("changed\n"), 0o644))
	changed, err = d.ChangedOnDisk()
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestClose(t *testing.T) {
	d, err := Parse("x", strings.NewReader("text"), "en-US")
	require.NoError(t, err)

	d.Close()

	_, err = d.UnitCount()
	require.ErrorIs(t, err, document.ErrSessionLost)
	_, err = d.UnitText(0)
	require.ErrorIs(t, err, document.ErrSessionLost)
}

func TestOutOfRangeUnit(t *testing.T) {
	d, err := Parse("x", strings.NewReader("text"), "en-US")
	require.NoError(t, err)

	err = d.SetCursorPosition(3, 0)
	require.ErrorIs(t, err, document.ErrSessionLost)
}

func TestWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o644))

	w, err := NewWatcher(path, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("two\n"), 0o644))

	select {
	case <-w.Events():
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func TestLoadIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o644))

	a, err := Load(path, "en-US")
	require.NoError(t, err)
	b, err := Load(path, "en-US")
	require.NoError(t, err)
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, path, a.Path())

	require.NoError(t, os.WriteFile(path, []byte("two\n"), 0o644))
	c, err := Load(path, "en-US")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), c.ID())
}
