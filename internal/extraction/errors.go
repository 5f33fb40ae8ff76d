package extraction

import (
	"errors"
	"fmt"
)

// ErrNoJSONFound means the model response contained no {...} object at all.
var ErrNoJSONFound = errors.New("no JSON object found in response")

// ErrInvalidStructure means the response parsed as JSON but is not an
// object with an items array.
var ErrInvalidStructure = errors.New("invalid JSON structure - missing items array")

// ParseError means the extracted substring failed to parse as JSON. Raw
// carries the original model text so callers can surface it for manual
// entry.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing extracted JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UpstreamError means the completion service returned a non-success status.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion service error (status %d): %s", e.Status, e.Body)
}
