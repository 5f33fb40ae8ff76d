package bill

import (
	"fmt"
	"strings"
)

// ItemInput is a not-yet-identified item, as it arrives from extraction or
// manual entry.
type ItemInput struct {
	Name  string
	Price float64
}

// Ledger is the mutable working state of one editing session: items,
// people, tax/tip, and the item→people assignment map. Every assignment
// key references a known item and every member a known person; the ledger
// reconciles this on removal.
//
// All operations are synchronous. The ledger is not safe for concurrent
// use; a single active editor is assumed and the caller serializes access.
//
// People are identified by their display name. Duplicate names are
// indistinguishable, and renaming a person does not rewrite assignment
// sets that still hold the old name. Rename before assigning, or reconcile
// in the caller.
type Ledger struct {
	items       []Item
	people      []string
	assignments map[string][]string
	tax         float64
	tip         float64
	idGen       IDGenerator
}

// NewLedger creates an empty ledger that draws item ids from idGen.
func NewLedger(idGen IDGenerator) *Ledger {
	return &Ledger{
		assignments: make(map[string][]string),
		idGen:       idGen,
	}
}

// Items returns a copy of the item list in insertion order.
func (l *Ledger) Items() []Item {
	items := make([]Item, len(l.items))
	copy(items, l.items)
	return items
}

// People returns a copy of the people list in insertion order.
func (l *Ledger) People() []string {
	people := make([]string, len(l.people))
	copy(people, l.people)
	return people
}

// Assignments returns a copy of the assignment map.
func (l *Ledger) Assignments() map[string][]string {
	assignments := make(map[string][]string, len(l.assignments))
	for itemID, assigned := range l.assignments {
		set := make([]string, len(assigned))
		copy(set, assigned)
		assignments[itemID] = set
	}
	return assignments
}

// Tax returns the current tax amount.
func (l *Ledger) Tax() float64 { return l.tax }

// Tip returns the current tip amount.
func (l *Ledger) Tip() float64 { return l.tip }

// SetCharges sets the receipt-level tax and tip.
func (l *Ledger) SetCharges(tax, tip float64) {
	l.tax = tax
	l.tip = tip
}

// AddItem appends an item with a freshly generated id and returns it.
func (l *Ledger) AddItem(name string, price float64) Item {
	item := Item{ID: l.idGen.Generate(), Name: name, Price: price}
	l.items = append(l.items, item)
	return item
}

// UpdateItem edits the name and price of an existing item.
func (l *Ledger) UpdateItem(id, name string, price float64) (Item, error) {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items[i].Name = name
			l.items[i].Price = price
			return l.items[i], nil
		}
	}
	return Item{}, fmt.Errorf("item not found: %s", id)
}

// RemoveItem removes an item and deletes its assignment set.
func (l *Ledger) RemoveItem(id string) error {
	for i := range l.items {
		if l.items[i].ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			delete(l.assignments, id)
			return nil
		}
	}
	return fmt.Errorf("item not found: %s", id)
}

// ReplaceItems swaps in a new item list with fresh ids and drops every
// assignment. People are kept, so a rescan mid-session does not lose the
// group.
func (l *Ledger) ReplaceItems(inputs []ItemInput) []Item {
	l.items = l.items[:0]
	l.assignments = make(map[string][]string)
	for _, in := range inputs {
		l.AddItem(in.Name, in.Price)
	}
	return l.Items()
}

// AddPerson appends a person to the group.
func (l *Ledger) AddPerson(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("person name is required")
	}
	l.people = append(l.people, name)
	return nil
}

// RenamePerson changes the display name at the given position. Assignment
// sets still holding the old name are left alone.
func (l *Ledger) RenamePerson(index int, name string) error {
	if index < 0 || index >= len(l.people) {
		return fmt.Errorf("no person at index %d", index)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("person name is required")
	}
	l.people[index] = name
	return nil
}

// RemovePerson removes the first person with the given name and filters
// that name out of every item's assignment set.
func (l *Ledger) RemovePerson(name string) error {
	found := false
	for i, p := range l.people {
		if p == name {
			l.people = append(l.people[:i], l.people[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("person not found: %s", name)
	}
	for itemID, assigned := range l.assignments {
		filtered := assigned[:0]
		for _, p := range assigned {
			if p != name {
				filtered = append(filtered, p)
			}
		}
		l.assignments[itemID] = filtered
	}
	return nil
}

// ToggleAssignment flips person's membership in the assignment set for
// itemID. Only that item's set is touched.
func (l *Ledger) ToggleAssignment(itemID, person string) error {
	if !l.hasItem(itemID) {
		return fmt.Errorf("item not found: %s", itemID)
	}
	if !l.hasPerson(person) {
		return fmt.Errorf("person not found: %s", person)
	}

	assigned := l.assignments[itemID]
	for i, p := range assigned {
		if p == person {
			l.assignments[itemID] = append(assigned[:i], assigned[i+1:]...)
			return nil
		}
	}
	l.assignments[itemID] = append(assigned, person)
	return nil
}

// SplitEvenly assigns every item to the full current people list.
func (l *Ledger) SplitEvenly() {
	for _, item := range l.items {
		set := make([]string, len(l.people))
		copy(set, l.people)
		l.assignments[item.ID] = set
	}
}

// ClearAssignments empties every item's assignment set.
func (l *Ledger) ClearAssignments() {
	for _, item := range l.items {
		l.assignments[item.ID] = []string{}
	}
}

// Reset returns the ledger to its empty state, ready for a new bill.
func (l *Ledger) Reset() {
	l.items = nil
	l.people = nil
	l.assignments = make(map[string][]string)
	l.tax = 0
	l.tip = 0
}

func (l *Ledger) hasItem(id string) bool {
	for _, item := range l.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

func (l *Ledger) hasPerson(name string) bool {
	for _, p := range l.people {
		if p == name {
			return true
		}
	}
	return false
}
