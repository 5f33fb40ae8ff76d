package bill

import (
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SQLiteArchive", func() {
	var archive *SQLiteArchive

	BeforeEach(func() {
		var err error
		archive, err = NewSQLiteArchive(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if archive != nil {
			archive.Close()
		}
	})

	Describe("Save", func() {
		var (
			saved *SavedBill
			err   error
		)

		JustBeforeEach(func() {
			saved, err = archive.Save(billFixture())
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("assigns an id and timestamp", func() {
			Expect(saved.ID).NotTo(BeEmpty())
			Expect(saved.CreatedAt).NotTo(BeZero())
		})

		It("round-trips the full snapshot across tables", func() {
			got, getErr := archive.Get(saved.ID)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Dinner at Thai Place"))
			Expect(got.Items).To(Equal(saved.Items))
			Expect(got.People).To(Equal([]string{"Alice", "Bob"}))
			Expect(got.Assignments["item-1"]).To(ConsistOf("Alice", "Bob"))
			Expect(got.Assignments["item-2"]).To(ConsistOf("Bob"))
			Expect(got.Results).To(HaveLen(2))
			Expect(got.Results["Alice"]).To(Equal(8.08))
			Expect(got.Tax).To(Equal(1.75))
			Expect(got.Tip).To(Equal(3.00))
			Expect(got.Total).To(Equal(24.24))
		})
	})

	Describe("Get", func() {
		When("the bill does not exist", func() {
			It("returns ErrNotFound", func() {
				_, err := archive.Get("missing")
				Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
			})
		})
	})

	Describe("List", func() {
		When("the archive is empty", func() {
			It("returns an empty slice", func() {
				bills, err := archive.List()
				Expect(err).NotTo(HaveOccurred())
				Expect(bills).To(BeEmpty())
			})
		})

		When("bills have been saved", func() {
			BeforeEach(func() {
				_, err := archive.Save(billFixture())
				Expect(err).NotTo(HaveOccurred())
				_, err = archive.Save(billFixture())
				Expect(err).NotTo(HaveOccurred())
			})

			It("returns all of them", func() {
				bills, err := archive.List()
				Expect(err).NotTo(HaveOccurred())
				Expect(bills).To(HaveLen(2))
			})
		})
	})

	Describe("Delete", func() {
		It("removes the bill and its dependent rows", func() {
			saved, err := archive.Save(billFixture())
			Expect(err).NotTo(HaveOccurred())

			Expect(archive.Delete(saved.ID)).To(Succeed())

			_, err = archive.Get(saved.ID)
			Expect(errors.Is(err, ErrNotFound)).To(BeTrue())
		})
	})
})
