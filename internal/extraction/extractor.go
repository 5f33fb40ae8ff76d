package extraction

// receiptPrompt is the shared prompt used by all providers. The cleanup
// rules in normalize.go are tuned to this exact prompt; changing one means
// re-validating the other.
const receiptPrompt = `Extract items, prices, tax, and tip from this receipt image.

Return ONLY this JSON structure (no other text):
{"items": [{"name": "Item Name", "price": 12.99}], "tax": 0.00, "tip": 0.00}

Rules:
- Numbers only for prices (not strings)
- Use 0.00 if tax/tip not found
- Clean item names
- No markdown, no explanations, just JSON`

// systemPrompt frames the model as a parser so it skips prose preambles.
const systemPrompt = "You are a receipt parser. Return only valid JSON without any markdown, explanations, or formatting."

// stopSequences truncates generation as soon as the model drifts into
// markdown or commentary.
var stopSequences = []string{"\n\n", "**", "```", "Analysis", "Receipt"}

// Generation parameters shared by all providers.
const (
	temperature = 0.0
	topP        = 0.1
	maxTokens   = 500
)

// Item is a single priced line entry extracted from a receipt.
type Item struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Receipt is the validated result of extracting a receipt image.
type Receipt struct {
	Items []Item  `json:"items"`
	Tax   float64 `json:"tax"`
	Tip   float64 `json:"tip"`
}

// Extractor defines the interface for turning a receipt image into a
// validated Receipt.
type Extractor interface {
	// ExtractReceipt analyzes a receipt image/PDF and extracts its items,
	// tax, and tip.
	ExtractReceipt(imageData []byte, contentType string) (*Receipt, error)
	// Close closes the extractor and releases resources
	Close() error
}
