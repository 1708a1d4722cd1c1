package document

import (
	"fmt"
	"sync"
)

// Unit is the cached view of one flat unit.
type Unit struct {
	Kind          Kind
	Text          string
	Language      string
	AutoGenerated bool
	Locator       Locator
}

// Model caches unit texts and metadata of a Document and maps flat unit
// indexes to locators. It is rebuilt whenever the unit count changes.
//
// Model is safe for concurrent use; background checkers read unit text while
// the foreground flow edits.
type Model struct {
	doc Document

	mu    sync.RWMutex
	units []Unit
	index map[Locator]int
}

// Load reads every unit of doc into a new Model.
func Load(doc Document) (*Model, error) {
	m := &Model{doc: doc}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Document returns the underlying document.
func (m *Model) Document() Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc
}

// Bind switches the model to doc and reloads every unit. On failure the
// model keeps its previous document.
func (m *Model) Bind(doc Document) error {
	prev := m.Document()
	m.mu.Lock()
	m.doc = doc
	m.mu.Unlock()

	if err := m.Reload(); err != nil {
		m.mu.Lock()
		m.doc = prev
		m.mu.Unlock()
		return err
	}
	return nil
}

// Reload re-reads every unit from the document.
func (m *Model) Reload() error {
	doc := m.Document()
	n, err := doc.UnitCount()
	if err != nil {
		return fmt.Errorf("unit count: %w", err)
	}

	units := make([]Unit, n)
	index := make(map[Locator]int, n)
	ordinals := make(map[Kind]int)

	for i := range n {
		u, err := readUnit(doc, i)
		if err != nil {
			return err
		}
		u.Locator = Locator{Kind: u.Kind, Ordinal: ordinals[u.Kind]}
		ordinals[u.Kind]++
		index[u.Locator] = i
		units[i] = u
	}

	m.mu.Lock()
	m.units = units
	m.index = index
	m.mu.Unlock()
	return nil
}

// Refresh reloads the model when the document's unit count changed and
// reports whether it did.
func (m *Model) Refresh() (bool, error) {
	n, err := m.Document().UnitCount()
	if err != nil {
		return false, fmt.Errorf("unit count: %w", err)
	}
	if n == m.Len() {
		return false, nil
	}
	return true, m.Reload()
}

func readUnit(doc Document, i int) (Unit, error) {
	text, err := doc.UnitText(i)
	if err != nil {
		return Unit{}, fmt.Errorf("read unit %d: %w", i, err)
	}
	kind, err := doc.Kind(i)
	if err != nil {
		return Unit{}, fmt.Errorf("kind of unit %d: %w", i, err)
	}
	lang, err := doc.UnitLanguage(i)
	if err != nil {
		return Unit{}, fmt.Errorf("language of unit %d: %w", i, err)
	}
	auto, err := doc.IsAutoGenerated(i)
	if err != nil {
		return Unit{}, fmt.Errorf("unit %d: %w", i, err)
	}
	return Unit{Kind: kind, Text: text, Language: lang, AutoGenerated: auto}, nil
}

// Len returns the number of flat units.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.units)
}

// Unit returns the cached unit at index i.
func (m *Model) Unit(i int) (Unit, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i < 0 || i >= len(m.units) {
		return Unit{}, false
	}
	return m.units[i], true
}

// Text returns the cached text of unit i, or "" when i is out of range.
func (m *Model) Text(i int) string {
	u, _ := m.Unit(i)
	return u.Text
}

// SetText updates the cached text of unit i.
func (m *Model) SetText(i int, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= 0 && i < len(m.units) {
		m.units[i].Text = text
	}
}

// Language returns the cached language of unit i.
func (m *Model) Language(i int) string {
	u, _ := m.Unit(i)
	return u.Language
}

// SetLanguage updates the cached language of unit i.
func (m *Model) SetLanguage(i int, lang string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i >= 0 && i < len(m.units) {
		m.units[i].Language = lang
	}
}

// IsSingleUnit reports whether unit i is checked without neighbouring units.
func (m *Model) IsSingleUnit(i int) bool {
	u, ok := m.Unit(i)
	return ok && u.Kind.SingleUnit()
}

// Locate returns the locator of flat unit i.
func (m *Model) Locate(i int) (Locator, bool) {
	u, ok := m.Unit(i)
	if !ok {
		return Locator{}, false
	}
	return u.Locator, true
}

// Flat returns the flat index of the unit identified by loc.
func (m *Model) Flat(loc Locator) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[loc]
	return i, ok
}

// Offset returns the flat character offset of the start of unit i relative
// to the start of unit from. Each unit boundary counts as one character.
func (m *Model) Offset(from, i int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for j := from; j < i && j < len(m.units); j++ {
		n += Len(m.units[j].Text) + 1
	}
	return n
}
