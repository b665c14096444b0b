package tlb

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/vm"
)

var _ = Describe("TLB", func() {
	var (
		mockCtrl *gomock.Controller
		tlb      *Comp
		set      *MockSet
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		set = NewMockSet(mockCtrl)

		tlb = MakeBuilder().Build("TLB")
		tlb.set = set
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("hit", func() {
		It("should return the frame and mark the entry used", func() {
			set.EXPECT().Lookup(vm.Page(0x12)).
				Return(3, vm.Frame(0x34), true)
			set.EXPECT().Visit(3)

			frame, found := tlb.Lookup(0x12)

			Expect(found).To(BeTrue())
			Expect(frame).To(Equal(vm.Frame(0x34)))
		})
	})

	Context("miss", func() {
		It("should report the page as absent", func() {
			set.EXPECT().Lookup(vm.Page(0x12)).
				Return(0, vm.Frame(0), false)

			_, found := tlb.Lookup(0x12)

			Expect(found).To(BeFalse())
		})
	})

	Context("insert", func() {
		It("should evict before caching a new page", func() {
			set.EXPECT().Lookup(vm.Page(0x12)).
				Return(0, vm.Frame(0), false)
			set.EXPECT().Evict().Return(5, true)
			set.EXPECT().Update(5, vm.Page(0x12), vm.Frame(0x34))
			set.EXPECT().Visit(5)

			tlb.Insert(0x12, 0x34)
		})

		It("should update in place if the page is already cached", func() {
			set.EXPECT().Lookup(vm.Page(0x12)).
				Return(7, vm.Frame(0x01), true)
			set.EXPECT().Update(7, vm.Page(0x12), vm.Frame(0x34))
			set.EXPECT().Visit(7)

			tlb.Insert(0x12, 0x34)
		})

		It("should panic if nothing can be evicted", func() {
			set.EXPECT().Lookup(vm.Page(0x12)).
				Return(0, vm.Frame(0), false)
			set.EXPECT().Evict().Return(0, false)

			Expect(func() { tlb.Insert(0x12, 0x34) }).To(Panic())
		})
	})
})

var _ = Describe("TLB replacement", func() {
	var tlb *Comp

	BeforeEach(func() {
		tlb = MakeBuilder().WithNumWays(4).Build("TLB")
	})

	It("should evict the entry resident the longest", func() {
		for p := 0; p < 4; p++ {
			tlb.Insert(vm.Page(p), vm.Frame(p))
		}

		tlb.Insert(4, 4)

		_, found := tlb.Lookup(0)
		Expect(found).To(BeFalse())
		for p := 1; p <= 4; p++ {
			_, found := tlb.Lookup(vm.Page(p))
			Expect(found).To(BeTrue())
		}
	})

	It("should keep an entry that was recently used", func() {
		for p := 0; p < 4; p++ {
			tlb.Insert(vm.Page(p), vm.Frame(p))
		}

		_, found := tlb.Lookup(0)
		Expect(found).To(BeTrue())

		tlb.Insert(4, 4)

		_, found = tlb.Lookup(0)
		Expect(found).To(BeTrue())
		_, found = tlb.Lookup(1)
		Expect(found).To(BeFalse())
	})

	It("should not duplicate an entry that is reinserted", func() {
		for p := 0; p < 4; p++ {
			tlb.Insert(vm.Page(p), vm.Frame(p))
		}

		tlb.Insert(0, 9)

		frame, found := tlb.Lookup(0)
		Expect(found).To(BeTrue())
		Expect(frame).To(Equal(vm.Frame(9)))

		tlb.Insert(4, 4)

		_, found = tlb.Lookup(1)
		Expect(found).To(BeFalse())
		_, found = tlb.Lookup(0)
		Expect(found).To(BeTrue())
	})

	It("should hold 16 entries by default", func() {
		tlb = MakeBuilder().Build("TLB")

		for p := 0; p < 16; p++ {
			tlb.Insert(vm.Page(p), vm.Frame(p))
		}

		for p := 0; p < 16; p++ {
			_, found := tlb.Lookup(vm.Page(p))
			Expect(found).To(BeTrue())
		}

		tlb.Insert(16, 16)

		_, found := tlb.Lookup(0)
		Expect(found).To(BeFalse())
	})
})
