package bill

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const billsBucket = "bills"

// BoltArchive implements the Archive interface using BoltDB
type BoltArchive struct {
	db *bbolt.DB
}

// NewBoltArchive opens (or creates) a bolt database at path.
func NewBoltArchive(path string) (*BoltArchive, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(billsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltArchive{db: db}, nil
}

// Save persists a bill snapshot, assigning its ID and CreatedAt.
func (b *BoltArchive) Save(bill *SavedBill) (*SavedBill, error) {
	bill.ID = uuid.New().String()
	bill.CreatedAt = time.Now().UTC()

	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(billsBucket))
		data, err := json.Marshal(bill)
		if err != nil {
			return fmt.Errorf("marshaling bill: %w", err)
		}
		return bucket.Put([]byte(bill.ID), data)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// Get retrieves a saved bill by ID
func (b *BoltArchive) Get(id string) (*SavedBill, error) {
	var bill *SavedBill
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(billsBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &bill)
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// List returns all saved bills
func (b *BoltArchive) List() ([]*SavedBill, error) {
	bills := make([]*SavedBill, 0)
	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(billsBucket))
		return bucket.ForEach(func(k, v []byte) error {
			var bill SavedBill
			if err := json.Unmarshal(v, &bill); err != nil {
				return fmt.Errorf("unmarshaling bill: %w", err)
			}
			bills = append(bills, &bill)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return bills, nil
}

// Delete removes a saved bill
func (b *BoltArchive) Delete(id string) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(billsBucket)).Delete([]byte(id))
	})
}

// Close closes the database connection
func (b *BoltArchive) Close() error {
	return b.db.Close()
}
