package tlb

import (
	"github.com/sarchlab/vmsim/vm"
)

// A Builder can build TLBs.
type Builder struct {
	numWays int
}

// MakeBuilder returns a Builder.
func MakeBuilder() Builder {
	return Builder{
		numWays: vm.TLBSize,
	}
}

// WithNumWays sets the number of entries the TLB can hold.
func (b Builder) WithNumWays(n int) Builder {
	b.numWays = n
	return b
}

// Build creates a new TLB.
func (b Builder) Build(name string) *Comp {
	t := &Comp{}
	t.name = name
	t.numWays = b.numWays

	t.reset()

	return t
}
