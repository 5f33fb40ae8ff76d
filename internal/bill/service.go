package bill

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"billsplit/internal/extraction"
)

// IDGenerator generates unique ids for items
type IDGenerator interface {
	Generate() string
}

// uuidGenerator is the default IDGenerator
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.New().String()
}

// InputError means the request payload was missing or unusable before any
// network call was made.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// Session is a snapshot of the current editing state.
type Session struct {
	Items       []Item              `json:"items"`
	People      []string            `json:"people"`
	Assignments map[string][]string `json:"assignments"`
	Tax         float64             `json:"tax"`
	Tip         float64             `json:"tip"`
}

// dataURLPrefix matches the data-URL header browsers prepend to base64
// image payloads.
var dataURLPrefix = regexp.MustCompile(`^data:image/[a-z]+;base64,`)

// Service owns the editing session and ties the extractor, the ledger, and
// the archive together. The ledger assumes a single active editor; the
// service mutex serializes concurrent HTTP access to it.
type Service struct {
	extractor extraction.Extractor
	archive   Archive

	mu     sync.Mutex
	ledger *Ledger
}

// NewService creates a new Service with the default id generator
func NewService(extractor extraction.Extractor, archive Archive) *Service {
	return NewServiceWithDeps(extractor, archive, &uuidGenerator{})
}

// NewServiceWithDeps creates a new Service with a custom id generator for testing
func NewServiceWithDeps(extractor extraction.Extractor, archive Archive, idGen IDGenerator) *Service {
	return &Service{
		extractor: extractor,
		archive:   archive,
		ledger:    NewLedger(idGen),
	}
}

// ScanReceipt decodes the submitted image, runs it through the extractor,
// and loads the resulting receipt into the session. Exactly one extraction
// call is made per submission; a failed or malformed response is surfaced
// as an error and the caller may resubmit.
func (s *Service) ScanReceipt(imageBase64 string) (*extraction.Receipt, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return nil, &InputError{Message: "no image provided"}
	}

	payload := dataURLPrefix.ReplaceAllString(imageBase64, "")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &InputError{Message: "image payload is not valid base64"}
	}

	receipt, err := s.extractor.ExtractReceipt(data, http.DetectContentType(data))
	if err != nil {
		slog.Error("Failed to extract receipt",
			"image_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("extracting receipt: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inputs := make([]ItemInput, len(receipt.Items))
	for i, item := range receipt.Items {
		inputs[i] = ItemInput{Name: item.Name, Price: item.Price}
	}
	s.ledger.ReplaceItems(inputs)
	s.ledger.SetCharges(receipt.Tax, receipt.Tip)

	return receipt, nil
}

// Session returns a snapshot of the current editing state.
func (s *Service) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{
		Items:       s.ledger.Items(),
		People:      s.ledger.People(),
		Assignments: s.ledger.Assignments(),
		Tax:         s.ledger.Tax(),
		Tip:         s.ledger.Tip(),
	}
}

// AddItem appends a manually entered item.
func (s *Service) AddItem(name string, price float64) Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.AddItem(name, price)
}

// UpdateItem edits an existing item.
func (s *Service) UpdateItem(id, name string, price float64) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.UpdateItem(id, name, price)
}

// RemoveItem removes an item and its assignments.
func (s *Service) RemoveItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RemoveItem(id)
}

// SetCharges sets tax and tip for the session.
func (s *Service) SetCharges(tax, tip float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.SetCharges(tax, tip)
}

// AddPerson adds a person to the group.
func (s *Service) AddPerson(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.AddPerson(name)
}

// RenamePerson renames the person at the given position.
func (s *Service) RenamePerson(index int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RenamePerson(index, name)
}

// RemovePerson removes a person and their assignments.
func (s *Service) RemovePerson(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.RemovePerson(name)
}

// ToggleAssignment flips a person's membership on one item.
func (s *Service) ToggleAssignment(itemID, person string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ToggleAssignment(itemID, person)
}

// SplitEvenly assigns every item to everyone.
func (s *Service) SplitEvenly() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.SplitEvenly()
}

// ClearAssignments empties every assignment set.
func (s *Service) ClearAssignments() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.ClearAssignments()
}

// Summary recomputes the split from the current session state.
func (s *Service) Summary() SplitResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CalculateSplit(s.ledger.Items(), s.ledger.Assignments(), s.ledger.People(), s.ledger.Tax(), s.ledger.Tip())
}

// SaveBill freezes the session into the archive and resets it for the
// next bill.
func (s *Service) SaveBill(name string) (*SavedBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Bill - %s", time.Now().Format("1/2/2006"))
	}

	result := CalculateSplit(s.ledger.Items(), s.ledger.Assignments(), s.ledger.People(), s.ledger.Tax(), s.ledger.Tip())
	saved, err := s.archive.Save(&SavedBill{
		Name:        name,
		Items:       s.ledger.Items(),
		People:      s.ledger.People(),
		Assignments: s.ledger.Assignments(),
		Tax:         s.ledger.Tax(),
		Tip:         s.ledger.Tip(),
		Total:       result.Total,
		Results:     result.Results,
	})
	if err != nil {
		return nil, fmt.Errorf("saving bill: %w", err)
	}

	s.ledger.Reset()
	return saved, nil
}

// Bills returns all saved bills.
func (s *Service) Bills() ([]*SavedBill, error) {
	bills, err := s.archive.List()
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	return bills, nil
}

// Bill retrieves one saved bill.
func (s *Service) Bill(id string) (*SavedBill, error) {
	bill, err := s.archive.Get(id)
	if err != nil {
		return nil, fmt.Errorf("getting bill: %w", err)
	}
	return bill, nil
}

// DeleteBill removes a saved bill.
func (s *Service) DeleteBill(id string) error {
	if err := s.archive.Delete(id); err != nil {
		return fmt.Errorf("deleting bill: %w", err)
	}
	return nil
}
