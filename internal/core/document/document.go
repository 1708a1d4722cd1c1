// Package document defines the document-access collaborator consumed by the
// proofreading core and the position model that maps flat units to locators.
package document

import "errors"

// ErrSessionLost is returned (wrapped) by Document implementations when the
// underlying document is no longer reachable.
var ErrSessionLost = errors.New("document session lost")

// Kind classifies a flat unit of text.
type Kind int

// Supported unit kinds. Body units are the visible paragraphs of the main
// text; everything else is embedded or structural content.
const (
	KindBody Kind = iota
	KindHeading
	KindFootnote
	KindTableCell
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindBody:
		return "body"
	case KindHeading:
		return "heading"
	case KindFootnote:
		return "footnote"
	case KindTableCell:
		return "table-cell"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

// Visible reports whether units of this kind belong to the body text.
func (k Kind) Visible() bool {
	return k == KindBody
}

// SingleUnit reports whether a unit of this kind is checked in isolation,
// without neighbouring units as context.
func (k Kind) SingleUnit() bool {
	return k != KindBody
}

// Locator identifies a unit by kind and ordinal among units of that kind.
type Locator struct {
	Kind    Kind
	Ordinal int
}

// Document is the document-access layer. Offsets and lengths count runes.
type Document interface {
	// ID identifies the document; a new ID means a different document.
	ID() string
	UnitCount() (int, error)
	UnitText(unit int) (string, error)
	SetUnitText(unit, start, length int, replacement string) error
	UnitLanguage(unit int) (string, error)
	SetUnitLanguage(unit, start, length int, lang string) error
	IsAutoGenerated(unit int) (bool, error)
	Kind(unit int) (Kind, error)
	CursorPosition() (unit, offset int, err error)
	SetCursorPosition(unit, offset int) error
}
