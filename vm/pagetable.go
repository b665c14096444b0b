package vm

// A PageTable records which frame holds each resident page.
type PageTable interface {
	Find(page Page) (Frame, bool)
	Insert(page Page, frame Frame)
}

// NewPageTable creates a new PageTable with every page not resident.
func NewPageTable() PageTable {
	return &pageTableImpl{}
}

// pageTableImpl is the default implementation of a PageTable. It keeps one
// slot per possible page.
type pageTableImpl struct {
	entries [NumPages]pageTableEntry
}

type pageTableEntry struct {
	frame Frame
	valid bool
}

// Find returns the frame that holds the given page. The bool return value
// indicates whether the page is resident.
func (t *pageTableImpl) Find(page Page) (Frame, bool) {
	e := t.entries[page]
	return e.frame, e.valid
}

// Insert records that the page is held by the frame. Pages map to at most
// one frame and are never unmapped, so Insert is called at most once per
// page.
func (t *pageTableImpl) Insert(page Page, frame Frame) {
	t.entries[page] = pageTableEntry{frame: frame, valid: true}
}
