// Package textdoc implements document.Document for Markdown-flavoured text
// files. Blocks separated by blank lines become units; headings, footnotes,
// tables and fenced code get their own kinds.
package textdoc

import (
	"bufio"
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/hay-kot/proofer/internal/core/document"
)

var (
	headingRe  = regexp.MustCompile(`^(#{1,6}\s+)(.*)$`)
	footnoteRe = regexp.MustCompile(`^(\[\^[^\]]+\]:\s*)(.*)$`)
	langRe     = regexp.MustCompile(`^<!--\s*lang:\s*([A-Za-z0-9-]+)\s*-->$`)
)

type block struct {
	kind   document.Kind
	prefix string
	text   string
	lang   string
	auto   bool
}

// Doc is a text file loaded into memory. Edits are kept in memory until Save.
type Doc struct {
	mu       sync.Mutex
	id       string
	path     string
	lang     string
	blocks   []block
	unit     int
	offset   int
	dirty    bool
	closed   bool
	snapshot []byte
}

// Load reads the file at path. Units without a language marker get lang.
func Load(path, lang string) (*Doc, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	d, err := Parse(abs, bytes.NewReader(data), lang)
	if err != nil {
		return nil, err
	}
	// Content is part of the identity: a file changed by another program is a
	// different document for the session.
	d.id = fmt.Sprintf("%s@%08x", abs, crc32.ChecksumIEEE(data))
	d.path = abs
	d.snapshot = data
	return d, nil
}

// Parse reads a document from r without binding it to a file.
func Parse(id string, r io.Reader, lang string) (*Doc, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return &Doc{id: id, lang: lang, blocks: parseBlocks(lines, lang)}, nil
}

func parseBlocks(lines []string, defaultLang string) []block {
	var (
		out  []block
		lang = defaultLang
	)

	add := func(b block) {
		b.lang = lang
		lang = defaultLang
		out = append(out, b)
	}

	for i := 0; i < len(lines); {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			i++

		case langRe.MatchString(trimmed):
			lang = langRe.FindStringSubmatch(trimmed)[1]
			i++

		case strings.HasPrefix(trimmed, "```"):
			j := i + 1
			for j < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[j]), "```") {
				j++
			}
			end := min(j+1, len(lines))
			add(block{kind: document.KindBody, text: strings.Join(lines[i:end], "\n"), auto: true})
			i = end

		case trimmed == "[TOC]":
			add(block{kind: document.KindBody, text: line, auto: true})
			i++

		case headingRe.MatchString(line):
			m := headingRe.FindStringSubmatch(line)
			add(block{kind: document.KindHeading, prefix: m[1], text: m[2]})
			i++

		case strings.HasPrefix(trimmed, "|"):
			j := i
			for j < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[j]), "|") {
				j++
			}
			add(block{kind: document.KindTableCell, text: strings.Join(lines[i:j], "\n")})
			i = j

		case footnoteRe.MatchString(line):
			m := footnoteRe.FindStringSubmatch(line)
			j := paragraphEnd(lines, i+1)
			text := strings.Join(append([]string{m[2]}, lines[i+1:j]...), "\n")
			add(block{kind: document.KindFootnote, prefix: m[1], text: text})
			i = j

		default:
			j := paragraphEnd(lines, i+1)
			add(block{kind: document.KindBody, text: strings.Join(lines[i:j], "\n")})
			i = j
		}
	}
	return out
}

// paragraphEnd returns the index of the first line at or after i that ends
// a paragraph.
func paragraphEnd(lines []string, i int) int {
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if t == "" || strings.HasPrefix(t, "```") || headingRe.MatchString(lines[i]) ||
			footnoteRe.MatchString(lines[i]) || langRe.MatchString(t) {
			break
		}
		i++
	}
	return i
}

// Path returns the file the document was loaded from.
func (d *Doc) Path() string {
	return d.path
}

// Dirty reports whether there are unsaved edits.
func (d *Doc) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

// Close detaches the document. Every later call fails with
// document.ErrSessionLost.
func (d *Doc) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
}

// Render returns the document text in file form.
func (d *Doc) Render() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.render()
}

func (d *Doc) render() []byte {
	var buf bytes.Buffer
	for i, b := range d.blocks {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		if b.lang != d.lang && b.lang != "" {
			fmt.Fprintf(&buf, "<!-- lang: %s -->\n", b.lang)
		}
		buf.WriteString(b.prefix)
		buf.WriteString(b.text)
	}
	buf.WriteString("\n")
	return buf.Bytes()
}

// Save writes the document back to its file atomically.
func (d *Doc) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.path == "" {
		return fmt.Errorf("document %s has no file", d.id)
	}

	data := d.render()
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, d.path); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	d.snapshot = data
	d.dirty = false
	return nil
}

// ChangedOnDisk reports whether the file differs from what was last loaded
// or saved.
func (d *Doc) ChangedOnDisk() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, err
	}
	return !bytes.Equal(data, d.snapshot), nil
}

func (d *Doc) check(unit int) error {
	if d.closed {
		return fmt.Errorf("%s: %w", d.id, document.ErrSessionLost)
	}
	if unit < 0 || unit >= len(d.blocks) {
		return fmt.Errorf("%s: unit %d: %w", d.id, unit, document.ErrSessionLost)
	}
	return nil
}

func (d *Doc) ID() string {
	return d.id
}

func (d *Doc) UnitCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, fmt.Errorf("%s: %w", d.id, document.ErrSessionLost)
	}
	return len(d.blocks), nil
}

func (d *Doc) UnitText(unit int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return "", err
	}
	return d.blocks[unit].text, nil
}

func (d *Doc) SetUnitText(unit, start, length int, replacement string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return err
	}
	b := &d.blocks[unit]
	b.text = document.Splice(b.text, start, length, replacement)
	d.dirty = true
	return nil
}

func (d *Doc) UnitLanguage(unit int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return "", err
	}
	return d.blocks[unit].lang, nil
}

// SetUnitLanguage sets the language of the whole unit. Plain text files have
// no character-level language markup, so the span is ignored.
func (d *Doc) SetUnitLanguage(unit, _, _ int, lang string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return err
	}
	d.blocks[unit].lang = lang
	d.dirty = true
	return nil
}

func (d *Doc) IsAutoGenerated(unit int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return false, err
	}
	return d.blocks[unit].auto, nil
}

func (d *Doc) Kind(unit int) (document.Kind, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return 0, err
	}
	return d.blocks[unit].kind, nil
}

func (d *Doc) CursorPosition() (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, 0, fmt.Errorf("%s: %w", d.id, document.ErrSessionLost)
	}
	return d.unit, d.offset, nil
}

func (d *Doc) SetCursorPosition(unit, offset int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return err
	}
	d.unit, d.offset = unit, offset
	return nil
}

var _ document.Document = (*Doc)(nil)
