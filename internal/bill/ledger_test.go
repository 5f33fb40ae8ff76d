package bill

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ledger", func() {
	var ledger *Ledger

	BeforeEach(func() {
		ledger = NewLedger(&seqIDGenerator{prefix: "item"})
	})

	Describe("AddItem", func() {
		It("appends items with fresh unique ids", func() {
			a := ledger.AddItem("Coffee", 4.25)
			b := ledger.AddItem("Bagel", 3.00)
			Expect(a.ID).To(Equal("item-1"))
			Expect(b.ID).To(Equal("item-2"))
			Expect(ledger.Items()).To(Equal([]Item{a, b}))
		})
	})

	Describe("RemoveItem", func() {
		var a, b Item

		BeforeEach(func() {
			a = ledger.AddItem("Coffee", 4.25)
			b = ledger.AddItem("Bagel", 3.00)
			Expect(ledger.AddPerson("Alice")).To(Succeed())
			Expect(ledger.ToggleAssignment(a.ID, "Alice")).To(Succeed())
			Expect(ledger.ToggleAssignment(b.ID, "Alice")).To(Succeed())
		})

		It("removes the item and cascades its assignment set", func() {
			Expect(ledger.RemoveItem(a.ID)).To(Succeed())
			Expect(ledger.Items()).To(Equal([]Item{b}))
			Expect(ledger.Assignments()).NotTo(HaveKey(a.ID))
			Expect(ledger.Assignments()[b.ID]).To(Equal([]string{"Alice"}))
		})

		It("errors for an unknown id", func() {
			Expect(ledger.RemoveItem("nope")).To(HaveOccurred())
		})
	})

	Describe("UpdateItem", func() {
		It("edits name and price in place", func() {
			a := ledger.AddItem("Cofee", 4.00)
			updated, err := ledger.UpdateItem(a.ID, "Coffee", 4.25)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated).To(Equal(Item{ID: a.ID, Name: "Coffee", Price: 4.25}))
			Expect(ledger.Items()[0]).To(Equal(updated))
		})
	})

	Describe("ReplaceItems", func() {
		BeforeEach(func() {
			old := ledger.AddItem("Old", 1.00)
			Expect(ledger.AddPerson("Alice")).To(Succeed())
			Expect(ledger.ToggleAssignment(old.ID, "Alice")).To(Succeed())
		})

		It("swaps the items, drops assignments, and keeps people", func() {
			items := ledger.ReplaceItems([]ItemInput{
				{Name: "Pizza", Price: 12},
				{Name: "Beer", Price: 6},
			})
			Expect(items).To(HaveLen(2))
			Expect(items[0].ID).NotTo(BeEmpty())
			Expect(ledger.Assignments()).To(BeEmpty())
			Expect(ledger.People()).To(Equal([]string{"Alice"}))
		})
	})

	Describe("ToggleAssignment", func() {
		var a, b Item

		BeforeEach(func() {
			a = ledger.AddItem("Pizza", 12)
			b = ledger.AddItem("Beer", 6)
			Expect(ledger.AddPerson("Alice")).To(Succeed())
			Expect(ledger.AddPerson("Bob")).To(Succeed())
			Expect(ledger.ToggleAssignment(a.ID, "Alice")).To(Succeed())
			Expect(ledger.ToggleAssignment(b.ID, "Alice")).To(Succeed())
			Expect(ledger.ToggleAssignment(b.ID, "Bob")).To(Succeed())
		})

		It("adds a person not in the set", func() {
			Expect(ledger.ToggleAssignment(a.ID, "Bob")).To(Succeed())
			Expect(ledger.Assignments()[a.ID]).To(ConsistOf("Alice", "Bob"))
		})

		It("removes a person already in the set", func() {
			Expect(ledger.ToggleAssignment(b.ID, "Bob")).To(Succeed())
			Expect(ledger.Assignments()[b.ID]).To(Equal([]string{"Alice"}))
		})

		It("restores the set after toggling the same person twice", func() {
			before := ledger.Assignments()[a.ID]
			Expect(ledger.ToggleAssignment(a.ID, "Bob")).To(Succeed())
			Expect(ledger.ToggleAssignment(a.ID, "Bob")).To(Succeed())
			Expect(ledger.Assignments()[a.ID]).To(Equal(before))
		})

		It("never touches any other item's set", func() {
			otherBefore := ledger.Assignments()[b.ID]
			Expect(ledger.ToggleAssignment(a.ID, "Bob")).To(Succeed())
			Expect(ledger.ToggleAssignment(a.ID, "Bob")).To(Succeed())
			Expect(ledger.Assignments()[b.ID]).To(Equal(otherBefore))
		})

		It("errors for an unknown item", func() {
			Expect(ledger.ToggleAssignment("nope", "Alice")).To(HaveOccurred())
		})

		It("errors for an unknown person", func() {
			Expect(ledger.ToggleAssignment(a.ID, "Mallory")).To(HaveOccurred())
		})
	})

	Describe("RemovePerson", func() {
		var a, b Item

		BeforeEach(func() {
			a = ledger.AddItem("Pizza", 12)
			b = ledger.AddItem("Beer", 6)
			Expect(ledger.AddPerson("Alice")).To(Succeed())
			Expect(ledger.AddPerson("Bob")).To(Succeed())
			Expect(ledger.ToggleAssignment(a.ID, "Alice")).To(Succeed())
			Expect(ledger.ToggleAssignment(a.ID, "Bob")).To(Succeed())
			Expect(ledger.ToggleAssignment(b.ID, "Bob")).To(Succeed())
		})

		It("filters the person out of every item's set", func() {
			Expect(ledger.RemovePerson("Bob")).To(Succeed())
			Expect(ledger.People()).To(Equal([]string{"Alice"}))
			Expect(ledger.Assignments()[a.ID]).To(Equal([]string{"Alice"}))
			Expect(ledger.Assignments()[b.ID]).To(BeEmpty())
		})

		It("leaves people not removed untouched", func() {
			Expect(ledger.RemovePerson("Bob")).To(Succeed())
			Expect(ledger.Assignments()[a.ID]).To(ContainElement("Alice"))
		})

		It("errors for an unknown person", func() {
			Expect(ledger.RemovePerson("Mallory")).To(HaveOccurred())
		})
	})

	Describe("RenamePerson", func() {
		BeforeEach(func() {
			a := ledger.AddItem("Pizza", 12)
			Expect(ledger.AddPerson("Alice")).To(Succeed())
			Expect(ledger.ToggleAssignment(a.ID, "Alice")).To(Succeed())
		})

		It("renames the person at the index", func() {
			Expect(ledger.RenamePerson(0, "Alicia")).To(Succeed())
			Expect(ledger.People()).To(Equal([]string{"Alicia"}))
		})

		It("does not rewrite assignment sets holding the old name", func() {
			Expect(ledger.RenamePerson(0, "Alicia")).To(Succeed())
			Expect(ledger.Assignments()["item-1"]).To(Equal([]string{"Alice"}))
		})

		It("errors for an out-of-range index", func() {
			Expect(ledger.RenamePerson(5, "Nobody")).To(HaveOccurred())
		})
	})

	Describe("SplitEvenly", func() {
		It("assigns every item to the full people list", func() {
			a := ledger.AddItem("Pizza", 12)
			b := ledger.AddItem("Beer", 6)
			Expect(ledger.AddPerson("Alice")).To(Succeed())
			Expect(ledger.AddPerson("Bob")).To(Succeed())

			ledger.SplitEvenly()

			Expect(ledger.Assignments()[a.ID]).To(Equal([]string{"Alice", "Bob"}))
			Expect(ledger.Assignments()[b.ID]).To(Equal([]string{"Alice", "Bob"}))
		})
	})

	Describe("ClearAssignments", func() {
		It("empties every item's set", func() {
			a := ledger.AddItem("Pizza", 12)
			Expect(ledger.AddPerson("Alice")).To(Succeed())
			Expect(ledger.ToggleAssignment(a.ID, "Alice")).To(Succeed())

			ledger.ClearAssignments()

			Expect(ledger.Assignments()[a.ID]).To(BeEmpty())
		})
	})

	Describe("Reset", func() {
		It("returns the ledger to its empty state", func() {
			ledger.AddItem("Pizza", 12)
			Expect(ledger.AddPerson("Alice")).To(Succeed())
			ledger.SetCharges(2, 1)

			ledger.Reset()

			Expect(ledger.Items()).To(BeEmpty())
			Expect(ledger.People()).To(BeEmpty())
			Expect(ledger.Assignments()).To(BeEmpty())
			Expect(ledger.Tax()).To(BeZero())
			Expect(ledger.Tip()).To(BeZero())
		})
	})
})
