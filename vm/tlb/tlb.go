// Package tlb provides a TLB that caches a small number of recently used
// translations.
package tlb

import (
	"github.com/sarchlab/vmsim/vm"
	"github.com/sarchlab/vmsim/vm/tlb/internal"
)

// Comp is a cache that maintains some page information.
type Comp struct {
	name    string
	numWays int

	set internal.Set
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// reset sets all the entries in the TLB to be invalid.
func (c *Comp) reset() {
	c.set = internal.NewSet(c.numWays)
}

// Lookup finds the frame that backs a page. A hit marks the entry as the most
// recently used one.
func (c *Comp) Lookup(page vm.Page) (vm.Frame, bool) {
	wayID, frame, found := c.set.Lookup(page)
	if !found {
		return 0, false
	}

	c.set.Visit(wayID)

	return frame, true
}

// Insert records the translation of a page. When the TLB is full, the entry
// that has gone the longest without being used is evicted. Inserting a page
// that is already resident updates the entry in place.
func (c *Comp) Insert(page vm.Page, frame vm.Frame) {
	wayID, _, found := c.set.Lookup(page)
	if !found {
		var ok bool
		wayID, ok = c.set.Evict()
		if !ok {
			panic("failed to evict")
		}
	}

	c.set.Update(wayID, page, frame)
	c.set.Visit(wayID)
}
