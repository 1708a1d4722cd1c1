package check

// Cache is the capability a background checker exposes for one category.
// Get returns false while the unit has not been checked yet; a checked unit
// without issues returns an empty slice and true.
type Cache interface {
	Get(unit int) ([]Issue, bool)
	// Invalidate drops the unit's entry so it is checked again.
	Invalidate(unit int)
	// Enqueue schedules the unit for checking.
	Enqueue(unit int)
}

// Category is one independent checking dimension with its own cache.
type Category struct {
	Name  string
	Cache Cache
	// MultiUnit categories only produce issues that span several units. They
	// contribute nothing for units checked in isolation.
	MultiUnit bool
	// Mixed categories report spelling and grammar issues together; their
	// spelling issues are re-validated against the live spell checker.
	Mixed bool
}

// SpellChecker answers live spelling queries.
type SpellChecker interface {
	IsCorrect(word, lang string) bool
}

// Invalidate drops unit from every category cache.
func Invalidate(categories []Category, unit int) {
	for _, c := range categories {
		c.Cache.Invalidate(unit)
	}
}

// Enqueue schedules unit with every category.
func Enqueue(categories []Category, unit int) {
	for _, c := range categories {
		c.Cache.Enqueue(unit)
	}
}
