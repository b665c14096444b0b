// Package mmu provides an MMU that translates logical addresses to physical
// addresses, bringing pages in from a backing store on demand.
package mmu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
)

// HookPosTLBHit is triggered when a translation is served by the TLB.
var HookPosTLBHit = &hooking.HookPos{Name: "TLBHit"}

// HookPosTLBMiss is triggered when a translation cannot be served by the TLB.
var HookPosTLBMiss = &hooking.HookPos{Name: "TLBMiss"}

// HookPosPageFault is triggered when the page of a translation is not in the
// physical memory.
var HookPosPageFault = &hooking.HookPos{Name: "PageFault"}

// HookPosTranslationDone is triggered when a translation completes. The hook
// item is the completed Translation.
var HookPosTranslationDone = &hooking.HookPos{Name: "TranslationDone"}

// ErrNoFreeFrames is returned when a page fault occurs and all the frames of
// the physical memory are occupied.
var ErrNoFreeFrames = errors.New("no free frames")

// A TranslationCache remembers recently used translations.
type TranslationCache interface {
	Lookup(page vm.Page) (vm.Frame, bool)
	Insert(page vm.Page, frame vm.Frame)
}

// A PageSource provides the content of the pages that are not resident in the
// physical memory.
type PageSource interface {
	ReadPage(page vm.Page) ([]byte, error)
}

// Comp translates logical addresses to physical addresses. Pages are loaded
// into frames on demand, in the order that the faults occur.
type Comp struct {
	hooking.HookableBase

	name string

	tlb        TranslationCache
	pageTable  vm.PageTable
	pageSource PageSource
	storage    *mem.Storage

	nextFrame int
	stats     Stats
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// Stats returns the counts of the translations performed so far.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Translate resolves one logical address and reads the byte stored at the
// resolved physical address.
//
// A translation that faults when no free frame is left still counts towards
// the translation and page-fault totals. The returned error wraps
// ErrNoFreeFrames in that case.
func (c *Comp) Translate(addr vm.VAddr) (Translation, error) {
	t := Translation{
		VAddr: addr,
		Page:  addr.Page(),
	}

	c.stats.Total++

	frame, err := c.resolveFrame(&t)
	if err != nil {
		return t, err
	}

	t.Frame = frame
	t.PAddr = vm.PAddrFrom(frame, addr.Offset())

	data, err := c.storage.Read(uint64(t.PAddr), 1)
	if err != nil {
		return t, err
	}
	t.Value = data[0]

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosTranslationDone,
		Item:   t,
	})

	return t, nil
}

func (c *Comp) resolveFrame(t *Translation) (vm.Frame, error) {
	frame, found := c.tlb.Lookup(t.Page)
	if found {
		t.TLBHit = true
		c.stats.TLBHits++
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosTLBHit,
			Item:   *t,
		})

		return frame, nil
	}

	c.InvokeHook(hooking.HookCtx{
		Domain: c,
		Pos:    HookPosTLBMiss,
		Item:   *t,
	})

	frame, found = c.pageTable.Find(t.Page)
	if !found {
		t.PageFault = true
		c.stats.PageFaults++
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosPageFault,
			Item:   *t,
		})

		var err error
		frame, err = c.bringPageIn(t.Page)
		if err != nil {
			return 0, err
		}
	}

	c.tlb.Insert(t.Page, frame)

	return frame, nil
}

// bringPageIn loads a page from the page source into the next free frame.
func (c *Comp) bringPageIn(page vm.Page) (vm.Frame, error) {
	if c.nextFrame >= vm.NumFrames {
		return 0, fmt.Errorf(
			"cannot bring in page %d: %w", page, ErrNoFreeFrames)
	}

	data, err := c.pageSource.ReadPage(page)
	if err != nil {
		return 0, err
	}

	frame := vm.Frame(c.nextFrame)
	err = c.storage.Write(uint64(frame)*vm.PageSize, data)
	if err != nil {
		return 0, err
	}

	c.pageTable.Insert(page, frame)
	c.nextFrame++

	return frame, nil
}
