package bill

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// Ensure SQLiteArchive implements Archive
var _ Archive = (*SQLiteArchive)(nil)

// schema is run on startup to ensure the tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    tax REAL NOT NULL,
    tip REAL NOT NULL,
    total REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_items (
    id TEXT PRIMARY KEY,
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    price REAL NOT NULL,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_people (
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_assignments (
    item_id TEXT NOT NULL REFERENCES bill_items(id) ON DELETE CASCADE,
    person TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bill_results (
    bill_id TEXT NOT NULL REFERENCES bills(id) ON DELETE CASCADE,
    person TEXT NOT NULL,
    amount REAL NOT NULL
);
`

// SQLiteArchive implements Archive using SQLite.
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive opens a SQLite archive at dbPath, creating the parent
// directory and the schema as needed.
func NewSQLiteArchive(dbPath string) (*SQLiteArchive, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite serializes writes anyway, and the pragma below is
	// per-connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteArchive{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteArchive) Close() error {
	return s.db.Close()
}

// Save persists a bill snapshot in one transaction, assigning its ID and
// CreatedAt.
func (s *SQLiteArchive) Save(bill *SavedBill) (*SavedBill, error) {
	bill.ID = uuid.New().String()
	bill.CreatedAt = time.Now().UTC()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO bills (id, name, created_at, tax, tip, total) VALUES (?, ?, ?, ?, ?, ?)",
		bill.ID, bill.Name, bill.CreatedAt.Unix(), bill.Tax, bill.Tip, bill.Total,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting bill: %w", err)
	}

	for i, item := range bill.Items {
		_, err = tx.Exec(
			"INSERT INTO bill_items (id, bill_id, name, price, position) VALUES (?, ?, ?, ?, ?)",
			item.ID, bill.ID, item.Name, item.Price, i,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting item: %w", err)
		}
		for _, person := range bill.Assignments[item.ID] {
			_, err = tx.Exec(
				"INSERT INTO bill_assignments (item_id, person) VALUES (?, ?)",
				item.ID, person,
			)
			if err != nil {
				return nil, fmt.Errorf("inserting assignment: %w", err)
			}
		}
	}

	for i, person := range bill.People {
		_, err = tx.Exec(
			"INSERT INTO bill_people (bill_id, name, position) VALUES (?, ?, ?)",
			bill.ID, person, i,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting person: %w", err)
		}
	}

	for person, amount := range bill.Results {
		_, err = tx.Exec(
			"INSERT INTO bill_results (bill_id, person, amount) VALUES (?, ?, ?)",
			bill.ID, person, amount,
		)
		if err != nil {
			return nil, fmt.Errorf("inserting result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return bill, nil
}

// Get retrieves a saved bill by ID, including items, people, assignments,
// and results.
func (s *SQLiteArchive) Get(id string) (*SavedBill, error) {
	bill := &SavedBill{
		Assignments: make(map[string][]string),
		Results:     make(map[string]float64),
	}
	var createdAt int64
	err := s.db.QueryRow(
		"SELECT id, name, created_at, tax, tip, total FROM bills WHERE id = ?",
		id,
	).Scan(&bill.ID, &bill.Name, &createdAt, &bill.Tax, &bill.Tip, &bill.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	bill.CreatedAt = time.Unix(createdAt, 0).UTC()

	itemRows, err := s.db.Query(
		"SELECT id, name, price FROM bill_items WHERE bill_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item Item
		if err := itemRows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	for i := range bill.Items {
		assignRows, err := s.db.Query(
			"SELECT person FROM bill_assignments WHERE item_id = ?",
			bill.Items[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("getting assignments: %w", err)
		}
		set := []string{}
		for assignRows.Next() {
			var person string
			if err := assignRows.Scan(&person); err != nil {
				assignRows.Close()
				return nil, fmt.Errorf("scanning assignment: %w", err)
			}
			set = append(set, person)
		}
		assignRows.Close()
		if err := assignRows.Err(); err != nil {
			return nil, fmt.Errorf("iterating assignments: %w", err)
		}
		bill.Assignments[bill.Items[i].ID] = set
	}

	peopleRows, err := s.db.Query(
		"SELECT name FROM bill_people WHERE bill_id = ? ORDER BY position",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting people: %w", err)
	}
	defer peopleRows.Close()

	for peopleRows.Next() {
		var name string
		if err := peopleRows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		bill.People = append(bill.People, name)
	}
	if err := peopleRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating people: %w", err)
	}

	resultRows, err := s.db.Query(
		"SELECT person, amount FROM bill_results WHERE bill_id = ?",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("getting results: %w", err)
	}
	defer resultRows.Close()

	for resultRows.Next() {
		var person string
		var amount float64
		if err := resultRows.Scan(&person, &amount); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		bill.Results[person] = amount
	}
	if err := resultRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}

	return bill, nil
}

// List returns all saved bills, newest first.
func (s *SQLiteArchive) List() ([]*SavedBill, error) {
	rows, err := s.db.Query("SELECT id FROM bills ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning bill id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bills: %w", err)
	}

	bills := make([]*SavedBill, 0, len(ids))
	for _, id := range ids {
		bill, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

// Delete removes a saved bill and its dependent rows.
func (s *SQLiteArchive) Delete(id string) error {
	if _, err := s.db.Exec("DELETE FROM bills WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting bill: %w", err)
	}
	return nil
}
