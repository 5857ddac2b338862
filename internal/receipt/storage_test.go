package receipt

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FileSlot", func() {
	var (
		path string
		slot *FileSlot
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "receipts.json")
		var err error
		slot, err = NewFileSlot(path)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewFileSlot", func() {
		When("the data directory does not exist", func() {
			It("creates it", func() {
				nested := filepath.Join(GinkgoT().TempDir(), "a", "b", "receipts.json")
				_, err := NewFileSlot(nested)
				Expect(err).NotTo(HaveOccurred())
				Expect(filepath.Dir(nested)).To(BeADirectory())
			})
		})
	})

	Describe("Load", func() {
		When("the file does not exist", func() {
			It("returns no data and no error", func() {
				data, err := slot.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(data).To(BeNil())
			})
		})

		When("a collection has been stored", func() {
			BeforeEach(func() {
				Expect(slot.Store([]byte(`[{"id":"a"}]`))).To(Succeed())
			})

			It("returns the stored bytes", func() {
				data, err := slot.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal(`[{"id":"a"}]`))
			})
		})
	})

	Describe("Store", func() {
		It("writes the file in place", func() {
			Expect(slot.Store([]byte(`[]`))).To(Succeed())
			Expect(path).To(BeAnExistingFile())
		})

		It("leaves no temp file behind", func() {
			Expect(slot.Store([]byte(`[]`))).To(Succeed())
			Expect(path + ".tmp").NotTo(BeAnExistingFile())
		})

		It("lets the later of two instances' writes win", func() {
			other, err := NewFileSlot(path)
			Expect(err).NotTo(HaveOccurred())

			Expect(slot.Store([]byte(`[{"id":"ours"}]`))).To(Succeed())
			Expect(other.Store([]byte(`[{"id":"theirs"}]`))).To(Succeed())

			data, err := slot.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`[{"id":"theirs"}]`))
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			Expect(slot.Close()).To(Succeed())
		})
	})

	Describe("reload", func() {
		It("observes exactly the last persisted snapshot", func() {
			Expect(slot.Store([]byte(`[{"id":"first"}]`))).To(Succeed())
			Expect(slot.Store([]byte(`[{"id":"second"}]`))).To(Succeed())

			raw, err := os.ReadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(raw)).To(Equal(`[{"id":"second"}]`))
		})
	})
})
