package bill

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"billsplit/internal/extraction"
)

// errorResponse is the wire shape of every failure. RawResponse carries the
// unparseable model text so the caller can fall back to manual entry.
type errorResponse struct {
	Error       string `json:"error"`
	RawResponse string `json:"rawResponse,omitempty"`
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError maps an error to its status code and structured payload.
// Nothing leaves the boundary as an unstructured failure.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	var inputErr *InputError
	var upstreamErr *extraction.UpstreamError
	var parseErr *extraction.ParseError
	switch {
	case errors.As(err, &inputErr):
		status = http.StatusBadRequest
	case errors.As(err, &upstreamErr):
		status = http.StatusBadGateway
	case errors.As(err, &parseErr):
		status = http.StatusUnprocessableEntity
		resp.RawResponse = parseErr.Raw
	case errors.Is(err, extraction.ErrNoJSONFound), errors.Is(err, extraction.ErrInvalidStructure):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	}

	writeJSON(w, status, resp)
}

// decodeBody decodes a JSON request body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, &InputError{Message: "invalid request body"})
		return false
	}
	return true
}

// handleScanReceipt accepts a base64 image and loads the extracted receipt
// into the session
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ImageBase64 string `json:"imageBase64"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := s.service.ScanReceipt(req.ImageBase64)
	if err != nil {
		slog.Error("Error scanning receipt", "error", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receipt)
}

// handleGetSession returns the current editing state
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Session())
}

// handleSetCharges sets tax and tip
func (s *Server) handleSetCharges(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tax float64 `json:"tax"`
		Tip float64 `json:"tip"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.service.SetCharges(req.Tax, req.Tip)
	writeJSON(w, http.StatusOK, s.service.Session())
}

// handleAddItem adds a manually entered item
func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	item := s.service.AddItem(req.Name, req.Price)
	writeJSON(w, http.StatusCreated, item)
}

// handleUpdateItem edits an item
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	item, err := s.service.UpdateItem(r.PathValue("id"), req.Name, req.Price)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleRemoveItem removes an item
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveItem(r.PathValue("id")); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddPerson adds a person to the group
func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.service.AddPerson(req.Name); err != nil {
		writeError(w, &InputError{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, s.service.Session())
}

// handleRenamePerson renames the person at a position
func (s *Server) handleRenamePerson(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, &InputError{Message: "invalid person index"})
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.service.RenamePerson(index, req.Name); err != nil {
		writeError(w, &InputError{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.service.Session())
}

// handleRemovePerson removes a person
func (s *Server) handleRemovePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemovePerson(r.PathValue("name")); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.service.Session())
}

// handleToggleAssignment flips one person's membership on one item
func (s *Server) handleToggleAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID string `json:"itemId"`
		Person string `json:"person"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.service.ToggleAssignment(req.ItemID, req.Person); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.service.Session())
}

// handleSplitEvenly assigns every item to everyone
func (s *Server) handleSplitEvenly(w http.ResponseWriter, r *http.Request) {
	s.service.SplitEvenly()
	writeJSON(w, http.StatusOK, s.service.Session())
}

// handleClearAssignments empties every assignment set
func (s *Server) handleClearAssignments(w http.ResponseWriter, r *http.Request) {
	s.service.ClearAssignments()
	writeJSON(w, http.StatusOK, s.service.Session())
}

// handleSummary returns the computed split, rounded for display
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	result := s.service.Summary()

	rounded := make(map[string]float64, len(result.Results))
	for person, amount := range result.Results {
		rounded[person] = Round2(amount)
	}
	writeJSON(w, http.StatusOK, SplitResult{
		Results:  rounded,
		Subtotal: Round2(result.Subtotal),
		Tax:      Round2(result.Tax),
		Tip:      Round2(result.Tip),
		Total:    Round2(result.Total),
	})
}

// handleSaveBill freezes the session into the archive
func (s *Server) handleSaveBill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	saved, err := s.service.SaveBill(req.Name)
	if err != nil {
		slog.Error("Error saving bill", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleListBills returns all saved bills
func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.service.Bills()
	if err != nil {
		slog.Error("Error listing bills", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

// handleGetBill returns one saved bill
func (s *Server) handleGetBill(w http.ResponseWriter, r *http.Request) {
	bill, err := s.service.Bill(r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

// handleDeleteBill removes a saved bill
func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteBill(r.PathValue("id")); err != nil {
		slog.Error("Error deleting bill", "error", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
