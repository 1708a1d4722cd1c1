// Package doctest provides an in-memory document.Document for tests.
package doctest

import (
	"fmt"
	"sync"

	"github.com/hay-kot/proofer/internal/core/document"
)

// Unit is one unit of a test document.
type Unit struct {
	Text string
	Lang string
	Kind document.Kind
	Auto bool
}

// Doc is an in-memory document. Set Fail to make every call return an error
// wrapping document.ErrSessionLost.
type Doc struct {
	mu     sync.Mutex
	id     string
	units  []Unit
	unit   int
	offset int
	writes int
	Fail   bool
}

// New returns a document with one body unit per text, all in en-US.
func New(texts ...string) *Doc {
	d := &Doc{id: "doc-1"}
	for _, t := range texts {
		d.units = append(d.units, Unit{Text: t, Lang: "en-US", Kind: document.KindBody})
	}
	return d
}

// NewUnits returns a document with the given units.
func NewUnits(units ...Unit) *Doc {
	return &Doc{id: "doc-1", units: units}
}

// SetID changes the document identity.
func (d *Doc) SetID(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.id = id
}

// Truncate drops every unit from n onwards.
func (d *Doc) Truncate(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < len(d.units) {
		d.units = d.units[:n]
	}
}

// Writes returns the number of SetUnitText calls.
func (d *Doc) Writes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}

// Texts returns the current unit texts.
func (d *Doc) Texts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.units))
	for i, u := range d.units {
		out[i] = u.Text
	}
	return out
}

func (d *Doc) check(unit int) error {
	if d.Fail {
		return fmt.Errorf("doctest: %w", document.ErrSessionLost)
	}
	if unit < 0 || unit >= len(d.units) {
		return fmt.Errorf("doctest: unit %d out of range: %w", unit, document.ErrSessionLost)
	}
	return nil
}

func (d *Doc) ID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id
}

func (d *Doc) UnitCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Fail {
		return 0, fmt.Errorf("doctest: %w", document.ErrSessionLost)
	}
	return len(d.units), nil
}

func (d *Doc) UnitText(unit int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return "", err
	}
	return d.units[unit].Text, nil
}

func (d *Doc) SetUnitText(unit, start, length int, replacement string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return err
	}
	d.units[unit].Text = document.Splice(d.units[unit].Text, start, length, replacement)
	d.writes++
	return nil
}

func (d *Doc) UnitLanguage(unit int) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return "", err
	}
	return d.units[unit].Lang, nil
}

// SetUnitLanguage records lang for the whole unit; spans are not tracked.
func (d *Doc) SetUnitLanguage(unit, _, _ int, lang string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return err
	}
	d.units[unit].Lang = lang
	return nil
}

func (d *Doc) IsAutoGenerated(unit int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return false, err
	}
	return d.units[unit].Auto, nil
}

func (d *Doc) Kind(unit int) (document.Kind, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.check(unit); err != nil {
		return 0, err
	}
	return d.units[unit].Kind, nil
}

func (d *Doc) CursorPosition() (int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Fail {
		return 0, 0, fmt.Errorf("doctest: %w", document.ErrSessionLost)
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
