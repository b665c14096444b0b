package mmu

import "github.com/sarchlab/vmsim/vm"

// A Translation is the outcome of translating one logical address. Value is
// the byte stored at the physical address.
type Translation struct {
	VAddr vm.VAddr
	PAddr vm.PAddr
	Page  vm.Page
	Frame vm.Frame
	Value byte

	TLBHit    bool
	PageFault bool
}

// Stats counts the translations that an MMU has performed.
type Stats struct {
	Total      uint64
	TLBHits    uint64
	PageFaults uint64
}

// TLBHitRate returns the fraction of translations served by the TLB. The
// second return value is false when no translation has been performed.
func (s Stats) TLBHitRate() (float64, bool) {
	if s.Total == 0 {
		return 0, false
	}

	return float64(s.TLBHits) / float64(s.Total), true
}

// PageFaultRate returns the fraction of translations that required a page to
// be brought in from the backing store. The second return value is false when
// no translation has been performed.
func (s Stats) PageFaultRate() (float64, bool) {
	if s.Total == 0 {
		return 0, false
	}

	return float64(s.PageFaults) / float64(s.Total), true
}
