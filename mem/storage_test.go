package mem_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem"
)

var _ = Describe("Storage", func() {
	It("should read and write in a single unit", func() {
		storage := mem.NewStorage(256)
		storage.Write(0, []byte{1, 2, 3, 4})

		res, _ := storage.Read(0, 2)
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := mem.NewStorage(512)
		storage.Write(254, []byte{1, 2, 3, 4})

		res, _ := storage.Read(254, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
	})

	It("should read zeros from units never written", func() {
		storage := mem.NewStorage(512)

		res, err := storage.Read(300, 4)

		Expect(err).ToNot(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0, 0}))
	})

	It("should return error if accessing over the capacity", func() {
		storage := mem.NewStorage(256)

		err := storage.Write(256, []byte{1})
		Expect(err).To(
			MatchError("accessing physical address beyond the storage capacity"))

		_, err = storage.Read(256, 1)
		Expect(err).To(
			MatchError("accessing physical address beyond the storage capacity"))
	})
})
