// Package trace provides hooks that record the translations an MMU performs.
package trace

import (
	"log"

	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/vm/mmu"
)

// translationEntry represents one completed translation in the database.
type translationEntry struct {
	Seq       uint64
	VAddr     uint64
	Page      uint64
	Offset    uint64
	Frame     uint64
	PAddr     uint64
	Value     uint64
	TLBHit    bool
	PageFault bool
}

// A dbTracer is a hook that records every completed translation into a
// database using the data recorder.
type dbTracer struct {
	dataRecorder   datarecording.DataRecorder
	numTranslation uint64
}

// NewDBTracer creates a new database-based tracer.
func NewDBTracer(dataRecorder datarecording.DataRecorder) hooking.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable("translations", translationEntry{})

	return t
}

// Func records a completed translation.
func (t *dbTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != mmu.HookPosTranslationDone {
		return
	}

	trans := ctx.Item.(mmu.Translation)

	t.numTranslation++
	entry := translationEntry{
		Seq:       t.numTranslation,
		VAddr:     uint64(trans.VAddr),
		Page:      uint64(trans.Page),
		Offset:    uint64(trans.VAddr.Offset()),
		Frame:     uint64(trans.Frame),
		PAddr:     uint64(trans.PAddr),
		Value:     uint64(trans.Value),
		TLBHit:    trans.TLBHit,
		PageFault: trans.PageFault,
	}

	t.dataRecorder.InsertData("translations", entry)
}

// A logTracer is a hook that writes one line per translation event into a
// logger.
type logTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a tracer that writes translation events to a logger.
func NewLogTracer(logger *log.Logger) hooking.Hook {
	return &logTracer{logger: logger}
}

// Func logs the event that triggered the hook.
func (t *logTracer) Func(ctx hooking.HookCtx) {
	trans, ok := ctx.Item.(mmu.Translation)
	if !ok {
		return
	}

	switch ctx.Pos {
	case mmu.HookPosTLBHit:
		t.logger.Printf("tlb-hit, page %d", trans.Page)
	case mmu.HookPosTLBMiss:
		t.logger.Printf("tlb-miss, page %d", trans.Page)
	case mmu.HookPosPageFault:
		t.logger.Printf("page-fault, page %d", trans.Page)
	case mmu.HookPosTranslationDone:
		t.logger.Printf("translate, 0x%04x -> 0x%04x",
			uint16(trans.VAddr), uint16(trans.PAddr))
	}
}
