// Package bill holds the bill-splitting domain: the editing-session ledger,
// the allocation calculator, the saved-bill archive, and the HTTP surface.
package bill

import "time"

// Item is a priced line entry with a unique identifier. IDs are assigned
// at creation and never reused.
type Item struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// SavedBill is a frozen snapshot of a finished split. The archive assigns
// ID and CreatedAt at save time; a saved bill is never mutated afterwards,
// delete is the only further operation.
type SavedBill struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	CreatedAt   time.Time           `json:"created_at"`
	Items       []Item              `json:"items"`
	People      []string            `json:"people"`
	Assignments map[string][]string `json:"assignments"`
	Tax         float64             `json:"tax"`
	Tip         float64             `json:"tip"`
	Total       float64             `json:"total"`
	Results     map[string]float64  `json:"results"`
}
