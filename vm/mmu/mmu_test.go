package mmu

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/hooking"
	"github.com/sarchlab/vmsim/mem"
	"github.com/sarchlab/vmsim/vm"
	"github.com/sarchlab/vmsim/vm/tlb"
)

type posRecordingHook struct {
	positions []string
}

func (h *posRecordingHook) Func(ctx hooking.HookCtx) {
	h.positions = append(h.positions, ctx.Pos.Name)
}

var _ = Describe("MMU", func() {
	var (
		mockCtrl   *gomock.Controller
		cache      *MockTranslationCache
		pageTable  *MockPageTable
		pageSource *MockPageSource
		storage    *mem.Storage
		m          *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		cache = NewMockTranslationCache(mockCtrl)
		pageTable = NewMockPageTable(mockCtrl)
		pageSource = NewMockPageSource(mockCtrl)
		storage = mem.NewStorage(vm.MemorySize)

		m = MakeBuilder().
			WithTLB(cache).
			WithPageTable(pageTable).
			WithPageSource(pageSource).
			WithStorage(storage).
			Build("MMU")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should translate on a TLB hit", func() {
		cache.EXPECT().Lookup(vm.Page(0x12)).Return(vm.Frame(0x34), true)

		t, err := m.Translate(0x1256)

		Expect(err).ToNot(HaveOccurred())
		Expect(t.PAddr).To(Equal(vm.PAddr(0x3456)))
		Expect(t.TLBHit).To(BeTrue())
		Expect(t.PageFault).To(BeFalse())
		Expect(m.Stats().Total).To(Equal(uint64(1)))
		Expect(m.Stats().TLBHits).To(Equal(uint64(1)))
		Expect(m.Stats().PageFaults).To(Equal(uint64(0)))
	})

	It("should fall back to the page table on a TLB miss", func() {
		cache.EXPECT().Lookup(vm.Page(0x12)).Return(vm.Frame(0), false)
		pageTable.EXPECT().Find(vm.Page(0x12)).Return(vm.Frame(0x34), true)
		cache.EXPECT().Insert(vm.Page(0x12), vm.Frame(0x34))

		t, err := m.Translate(0x1256)

		Expect(err).ToNot(HaveOccurred())
		Expect(t.PAddr).To(Equal(vm.PAddr(0x3456)))
		Expect(t.TLBHit).To(BeFalse())
		Expect(t.PageFault).To(BeFalse())
		Expect(m.Stats().TLBHits).To(Equal(uint64(0)))
		Expect(m.Stats().PageFaults).To(Equal(uint64(0)))
	})

	It("should bring the page in on a page fault", func() {
		pageData := make([]byte, vm.PageSize)
		pageData[0x56] = 0x7f

		cache.EXPECT().Lookup(vm.Page(0x12)).Return(vm.Frame(0), false)
		pageTable.EXPECT().Find(vm.Page(0x12)).Return(vm.Frame(0), false)
		pageSource.EXPECT().ReadPage(vm.Page(0x12)).Return(pageData, nil)
		pageTable.EXPECT().Insert(vm.Page(0x12), vm.Frame(0))
		cache.EXPECT().Insert(vm.Page(0x12), vm.Frame(0))

		t, err := m.Translate(0x1256)

		Expect(err).ToNot(HaveOccurred())
		Expect(t.PageFault).To(BeTrue())
		Expect(t.Frame).To(Equal(vm.Frame(0)))
		Expect(t.PAddr).To(Equal(vm.PAddr(0x56)))
		Expect(t.Value).To(Equal(byte(0x7f)))
		Expect(m.Stats().PageFaults).To(Equal(uint64(1)))

		data, _ := storage.Read(uint64(t.PAddr), 1)
		Expect(data[0]).To(Equal(byte(0x7f)))
	})

	It("should allocate frames in the order that faults occur", func() {
		pageData := make([]byte, vm.PageSize)

		cache.EXPECT().Lookup(gomock.Any()).
			Return(vm.Frame(0), false).Times(2)
		pageTable.EXPECT().Find(gomock.Any()).
			Return(vm.Frame(0), false).Times(2)
		pageSource.EXPECT().ReadPage(gomock.Any()).
			Return(pageData, nil).Times(2)
		pageTable.EXPECT().Insert(vm.Page(7), vm.Frame(0))
		pageTable.EXPECT().Insert(vm.Page(3), vm.Frame(1))
		cache.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(2)

		t1, _ := m.Translate(vm.VAddrFromInt(7 << 8))
		t2, _ := m.Translate(vm.VAddrFromInt(3 << 8))

		Expect(t1.Frame).To(Equal(vm.Frame(0)))
		Expect(t2.Frame).To(Equal(vm.Frame(1)))
	})

	It("should fail when no frame is free", func() {
		m.nextFrame = vm.NumFrames

		cache.EXPECT().Lookup(vm.Page(0x12)).Return(vm.Frame(0), false)
		pageTable.EXPECT().Find(vm.Page(0x12)).Return(vm.Frame(0), false)

		_, err := m.Translate(0x1256)

		Expect(err).To(MatchError(ErrNoFreeFrames))
		Expect(m.Stats().Total).To(Equal(uint64(1)))
		Expect(m.Stats().PageFaults).To(Equal(uint64(1)))
	})

	It("should propagate page source failures", func() {
		readErr := errors.New("short file")

		cache.EXPECT().Lookup(vm.Page(0x12)).Return(vm.Frame(0), false)
		pageTable.EXPECT().Find(vm.Page(0x12)).Return(vm.Frame(0), false)
		pageSource.EXPECT().ReadPage(vm.Page(0x12)).Return(nil, readErr)

		_, err := m.Translate(0x1256)

		Expect(err).To(MatchError(readErr))
	})

	It("should trigger hooks along the fault path", func() {
		hook := &posRecordingHook{}
		m.AcceptHook(hook)

		pageData := make([]byte, vm.PageSize)
		cache.EXPECT().Lookup(vm.Page(0x12)).Return(vm.Frame(0), false)
		pageTable.EXPECT().Find(vm.Page(0x12)).Return(vm.Frame(0), false)
		pageSource.EXPECT().ReadPage(vm.Page(0x12)).Return(pageData, nil)
		pageTable.EXPECT().Insert(gomock.Any(), gomock.Any())
		cache.EXPECT().Insert(gomock.Any(), gomock.Any())

		m.Translate(0x1256)

		Expect(hook.positions).To(Equal([]string{
			"TLBMiss", "PageFault", "TranslationDone",
		}))
	})

	It("should trigger hooks on a hit", func() {
		hook := &posRecordingHook{}
		m.AcceptHook(hook)

		cache.EXPECT().Lookup(vm.Page(0x12)).Return(vm.Frame(0x34), true)

		m.Translate(0x1256)

		Expect(hook.positions).To(Equal([]string{
			"TLBHit", "TranslationDone",
		}))
	})
})

var _ = Describe("MMU with a real TLB and page table", func() {
	var (
		mockCtrl   *gomock.Controller
		pageSource *MockPageSource
		m          *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		pageSource = NewMockPageSource(mockCtrl)
		pageSource.EXPECT().
			ReadPage(gomock.Any()).
			DoAndReturn(func(page vm.Page) ([]byte, error) {
				data := make([]byte, vm.PageSize)
				for i := range data {
					data[i] = byte(int(page) + i)
				}
				return data, nil
			}).
			AnyTimes()

		m = MakeBuilder().
			WithTLB(tlb.MakeBuilder().Build("TLB")).
			WithPageSource(pageSource).
			Build("MMU")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should translate the same address to the same frame", func() {
		t1, err := m.Translate(0x0043)
		Expect(err).ToNot(HaveOccurred())
		Expect(t1.PAddr).To(Equal(vm.PAddr(0x0043)))
		Expect(t1.Value).To(Equal(byte(0x43)))
		Expect(t1.PageFault).To(BeTrue())

		t2, err := m.Translate(0x0043)
		Expect(err).ToNot(HaveOccurred())
		Expect(t2.PAddr).To(Equal(t1.PAddr))
		Expect(t2.Value).To(Equal(t1.Value))
		Expect(t2.TLBHit).To(BeTrue())

		stats := m.Stats()
		Expect(stats.Total).To(Equal(uint64(2)))
		Expect(stats.TLBHits).To(Equal(uint64(1)))
		Expect(stats.PageFaults).To(Equal(uint64(1)))
	})

	It("should reuse the page table after the TLB evicts an entry", func() {
		for p := 0; p <= 16; p++ {
			_, err := m.Translate(vm.VAddrFromInt(int64(p) << 8))
			Expect(err).ToNot(HaveOccurred())
		}

		t, err := m.Translate(0x0000)
		Expect(err).ToNot(HaveOccurred())
		Expect(t.TLBHit).To(BeFalse())
		Expect(t.PageFault).To(BeFalse())
		Expect(t.Frame).To(Equal(vm.Frame(0)))

		Expect(m.Stats().PageFaults).To(Equal(uint64(17)))
	})

	It("should hold all the pages at once", func() {
		for p := 0; p < vm.NumPages; p++ {
			t, err := m.Translate(vm.VAddrFromInt(int64(p) << 8))
			Expect(err).ToNot(HaveOccurred())
			Expect(t.Frame).To(Equal(vm.Frame(p)))
			Expect(t.Value).To(Equal(byte(p)))
		}

		t, err := m.Translate(0x0000)
		Expect(err).ToNot(HaveOccurred())
		Expect(t.Frame).To(Equal(vm.Frame(0)))
	})
})
