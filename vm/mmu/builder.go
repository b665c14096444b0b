package mmu

import (
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

// A Builder can build MMU components.
type Builder struct {
	tlb        TranslationCache
	pageTable  vm.PageTable
	pageSource PageSource
	storage    *mem.Storage
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithTLB sets the translation cache the MMU consults first.
func (b Builder) WithTLB(t TranslationCache) Builder {
	b.tlb = t
	return b
}

// WithPageTable sets the page table that the MMU uses.
func (b Builder) WithPageTable(pt vm.PageTable) Builder {
	b.pageTable = pt
	return b
}

// WithPageSource sets the source that provides the content of faulting pages.
func (b Builder) WithPageSource(s PageSource) Builder {
	b.pageSource = s
	return b
}

// WithStorage sets the storage that models the physical memory.
func (b Builder) WithStorage(s *mem.Storage) Builder {
	b.storage = s
	return b
}

// Build returns a newly created MMU component.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.name = name

	if b.tlb == nil {
		panic("mmu requires a translation cache")
	}
	c.tlb = b.tlb

	if b.pageSource == nil {
		panic("mmu requires a page source")
	}
	c.pageSource = b.pageSource

	c.pageTable = b.pageTable
	if c.pageTable == nil {
		c.pageTable = vm.NewPageTable()
	}

	c.storage = b.storage
	if c.storage == nil {
		c.storage = mem.NewStorage(vm.MemorySize)
	}

	return c
}
