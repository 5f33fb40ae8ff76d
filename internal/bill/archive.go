package bill

import "errors"

// ErrNotFound is returned by archive lookups for unknown bill ids.
var ErrNotFound = errors.New("bill not found")

// Archive is the append-only keyed collection of saved bills. The core
// does not depend on the storage medium behind it.
type Archive interface {
	// Save persists a bill snapshot, assigning its ID and CreatedAt, and
	// returns the completed record.
	Save(bill *SavedBill) (*SavedBill, error)

	// Get retrieves a saved bill by ID.
	Get(id string) (*SavedBill, error)

	// List returns all saved bills.
	List() ([]*SavedBill, error)

	// Delete removes a saved bill.
	Delete(id string) error

	// Close releases any resources held by the archive.
	Close() error
}
