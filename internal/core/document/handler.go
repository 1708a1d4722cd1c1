package document

// Handler writes a replacement into one unit. Each Kind has one handler.
type Handler interface {
	Replace(doc Document, unit int, current string, start, length int, replacement string) error
}

// rangeHandler replaces only the affected span.
type rangeHandler struct{}

func (rangeHandler) Replace(doc Document, unit int, _ string, start, length int, replacement string) error {
	return doc.SetUnitText(unit, start, length, replacement)
}

// wholeUnitHandler rewrites the complete unit text. Table cells and shapes
// are stored as single values by most hosts and cannot be patched in place.
type wholeUnitHandler struct{}

func (wholeUnitHandler) Replace(doc Document, unit int, current string, start, length int, replacement string) error {
	return doc.SetUnitText(unit, 0, Len(current), Splice(current, start, length, replacement))
}

var handlers = map[Kind]Handler{
	KindBody:      rangeHandler{},
	KindHeading:   rangeHandler{},
	KindFootnote:  rangeHandler{},
	KindTableCell: wholeUnitHandler{},
	KindShape:     wholeUnitHandler{},
}

// HandlerFor returns the write handler for units of kind k.
func HandlerFor(k Kind) Handler {
	if h, ok := handlers[k]; ok {
		return h
	}
	return rangeHandler{}
}
