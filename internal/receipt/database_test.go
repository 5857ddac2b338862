package receipt

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltSlot", func() {
	var (
		dbPath string
		slot   *BoltSlot
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "test.db")
		var err error
		slot, err = NewBoltSlot(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if slot != nil {
			slot.Close()
		}
	})

	Describe("Load", func() {
		When("nothing has been stored", func() {
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
		It("overwrites the previous record", func() {
			Expect(slot.Store([]byte(`[{"id":"a"}]`))).To(Succeed())
			Expect(slot.Store([]byte(`[{"id":"b"}]`))).To(Succeed())
			data, err := slot.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`[{"id":"b"}]`))
		})

		It("survives a reopen", func() {
			Expect(slot.Store([]byte(`[]`))).To(Succeed())
			Expect(slot.Close()).To(Succeed())

			reopened, err := NewBoltSlot(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			data, err := reopened.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal(`[]`))
			slot = nil
		})
	})

	Describe("Close", func() {
		It("should not return an error", func() {
			Expect(slot.Close()).To(Succeed())
			slot = nil
		})
	})
})
