// Package vm provides the models for address translation.
package vm

// Geometry of the simulated machine. Pages and frames share one size, and
// the logical and physical address spaces are both 16 bits wide.
const (
	// PageSize is the number of bytes in a page and in a frame.
	PageSize = 256

	// NumPages is the number of pages in the logical address space.
	NumPages = 256

	// NumFrames is the number of frames in physical memory.
	NumFrames = 256

	// TLBSize is the number of entries the translation cache holds.
	TLBSize = 16

	// MemorySize is the total capacity of physical memory in bytes.
	MemorySize = NumFrames * PageSize
)

// offsetBits is the width of the in-page offset field of an address.
const offsetBits = 8

// A Page identifies a page of the logical address space.
type Page uint8

// A Frame identifies a frame of physical memory.
type Frame uint8

// A VAddr is a logical address as seen by the simulated process. Only the
// low 16 bits of an input value are significant.
type VAddr uint16

// VAddrFromInt converts a raw input value to a logical address, keeping the
// low 16 bits. Wider values are truncated on purpose, not rejected.
func VAddrFromInt(v int64) VAddr {
	return VAddr(uint64(v))
}

// Page returns the page number encoded in the upper eight bits.
func (a VAddr) Page() Page {
	return Page(a >> offsetBits)
}

// Offset returns the byte offset within the page.
func (a VAddr) Offset() uint8 {
	return uint8(a)
}

// A PAddr is a physical address in the simulated memory.
type PAddr uint16

// PAddrFrom assembles a physical address from a frame and an in-frame
// offset. The offset is carried over from the logical address unchanged.
func PAddrFrom(frame Frame, offset uint8) PAddr {
	return PAddr(frame)<<offsetBits | PAddr(offset)
}

// Frame returns the frame number encoded in the upper eight bits.
func (a PAddr) Frame() Frame {
	return Frame(a >> offsetBits)
}

// Offset returns the byte offset within the frame.
func (a PAddr) Offset() uint8 {
	return uint8(a)
}
