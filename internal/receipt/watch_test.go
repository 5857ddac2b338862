package receipt

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FileWatcher", func() {
	var (
		path    string
		slot    *FileSlot // the watched instance's slot
		other   *FileSlot // a second instance sharing the same file
		watcher *FileWatcher
		changes chan []byte
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "receipts.json")
		var err error
		slot, err = NewFileSlot(path)
		Expect(err).NotTo(HaveOccurred())
		other, err = NewFileSlot(path)
		Expect(err).NotTo(HaveOccurred())

		watcher, err = NewFileWatcher(slot)
		Expect(err).NotTo(HaveOccurred())

		changes = make(chan []byte, 16)
		watcher.Start(func(data []byte) {
			changes <- data
		})
	})

	AfterEach(func() {
		watcher.Close()
	})

	When("another instance writes the slot file", func() {
		It("delivers the new serialized collection", func() {
			Expect(other.Store([]byte(`[{"id":"remote"}]`))).To(Succeed())

			var got []byte
			Eventually(changes, 5*time.Second).Should(Receive(&got))
			Expect(string(got)).To(Equal(`[{"id":"remote"}]`))
		})

		It("delivers successive writes in order", func() {
			Expect(other.Store([]byte(`[{"id":"one"}]`))).To(Succeed())

			var first []byte
			Eventually(changes, 5*time.Second).Should(Receive(&first))
			Expect(string(first)).To(Equal(`[{"id":"one"}]`))

			Expect(other.Store([]byte(`[{"id":"two"}]`))).To(Succeed())

			var second []byte
			Eventually(changes, 5*time.Second).Should(Receive(&second))
			Expect(string(second)).To(Equal(`[{"id":"two"}]`))
		})
	})

	When("this instance writes its own slot", func() {
		It("suppresses the echo", func() {
			Expect(slot.Store([]byte(`[{"id":"local"}]`))).To(Succeed())
			Consistently(changes, 500*time.Millisecond).ShouldNot(Receive())
		})
	})
})
