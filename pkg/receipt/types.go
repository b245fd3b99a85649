package receipt

import "context"

// TextResult is the outcome of one OCR extraction over a receipt image.
// Confidence is the mean of per-word confidences reported by the engine,
// on a 0-100 scale; words with zero confidence are excluded from the mean.
type TextResult struct {
	ExtractedText    string  `json:"extracted_text"`
	Confidence       float64 `json:"confidence"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
}

// Suggestion is a ranked catalog match for one detected item. DetectedText
// echoes the item text the match was computed from so results stay traceable.
type Suggestion struct {
	IngredientID    uint    `json:"ingredient_id"`
	IngredientName  string  `json:"ingredient_name"`
	ConfidenceScore float64 `json:"confidence_score"`
	DetectedText    string  `json:"detected_text"`
}

// Item is one purchased item recovered from the receipt text. Quantity and
// Price are nil when absent or implausible; present values are always > 0.
type Item struct {
	DetectedText string       `json:"detected_text"`
	Quantity     *float64     `json:"quantity"`
	Unit         *string      `json:"unit"`
	Price        *float64     `json:"price"`
	Suggestions  []Suggestion `json:"suggestions"`
}

// ProcessedResult is the full pipeline output for one image. DetectedItems
// preserves the order the lines appear in RawText.
type ProcessedResult struct {
	RawText            string `json:"raw_text"`
	DetectedItems      []Item `json:"detected_items"`
	TotalItemsDetected int    `json:"total_items_detected"`
	ProcessingTimeMS   int64  `json:"processing_time_ms"`
}

// Candidate is one catalog row returned by a search.
type Candidate struct {
	ID   uint
	Name string
}

// CatalogSearcher is the external ingredient catalog contract. The catalog
// performs its own coarse substring/prefix filtering; scoring happens here.
type CatalogSearcher interface {
	SearchIngredients(ctx context.Context, query string) ([]Candidate, error)
}
