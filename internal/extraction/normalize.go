package extraction

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// cleanupRules is the fixed, ordered set of rewrites applied to raw model
// output before looking for a JSON payload. The rules strip the markdown
// and boilerplate the vision models are known to emit around the object.
// Order matters: bold spans must go before italic spans.
var cleanupRules = []*regexp.Regexp{
	regexp.MustCompile(`\*\*.*?\*\*`),
	regexp.MustCompile(`\*.*?\*`),
	regexp.MustCompile("```json"),
	regexp.MustCompile("```"),
	regexp.MustCompile(`Receipt Analysis`),
	regexp.MustCompile(`Analysis:`),
}

// Normalize turns an untrusted model response into a validated Receipt.
//
// The pipeline is: apply cleanupRules, slice the text between the first '{'
// and the last '}', parse it, and validate that the result is an object
// with an items array. Item prices and receipt tax/tip go through
// coerceNumber, item names through coerceName. It performs no I/O.
func Normalize(raw string) (*Receipt, error) {
	cleaned := raw
	for _, rule := range cleanupRules {
		cleaned = rule.ReplaceAllString(cleaned, "")
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrNoJSONFound
	}
	payload := strings.TrimSpace(cleaned[start : end+1])

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		// Carry the original text, not the cleaned slice, so the caller
		// can show what the model actually said.
		return nil, &ParseError{Raw: raw, Err: err}
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, ErrInvalidStructure
	}
	rawItems, ok := obj["items"].([]any)
	if !ok {
		return nil, ErrInvalidStructure
	}

	receipt := &Receipt{
		Items: make([]Item, 0, len(rawItems)),
		Tax:   coerceNumber(obj["tax"]),
		Tip:   coerceNumber(obj["tip"]),
	}
	for _, rawItem := range rawItems {
		fields, _ := rawItem.(map[string]any)
		receipt.Items = append(receipt.Items, Item{
			Name:  coerceName(fields["name"]),
			Price: coerceNumber(fields["price"]),
		})
	}
	return receipt, nil
}

// coerceNumber is the silent-zero-fill policy: numbers pass through,
// numeric strings are parsed, everything else (including absent fields)
// becomes 0. Deliberately lossy so a partially garbled receipt still loads
// for manual correction.
func coerceNumber(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// coerceName defaults absent or blank item names to a placeholder.
func coerceName(v any) string {
	name, _ := v.(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unnamed item"
	}
	return name
}
