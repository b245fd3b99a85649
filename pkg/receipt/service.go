package receipt

import (
	"context"
	"log"
	"sync"
	"time"
)

// textExtractor is what the orchestrator needs from the extraction engine.
type textExtractor interface {
	ExtractText(ctx context.Context, data []byte) (TextResult, error)
}

// Service composes preprocessing, extraction, parsing and catalog matching
// into one request/response cycle. It is safe for concurrent use and holds
// no per-request state; the engine's slot pool bounds OCR parallelism.
type Service struct {
	extractor      textExtractor
	matcher        *Matcher
	maxSuggestions int
	initErr        error
}

// NewService builds the full pipeline. The OCR dependency check runs here,
// once; a service built against a missing tesseract runtime reports
// ErrServiceUnavailable on every call instead of attempting work.
func NewService(catalog CatalogSearcher) *Service {
	engine, err := NewEngine()
	svc := &Service{
		matcher:        NewMatcher(catalog),
		maxSuggestions: DefaultMaxSuggestions,
		initErr:        err,
	}
	if err == nil {
		svc.extractor = engine
	} else {
		log.Printf("receipt service degraded: %v", err)
	}
	return svc
}

// ExtractTextOnly exposes just the extraction step for callers that need raw
// text without item parsing or catalog matching.
func (s *Service) ExtractTextOnly(ctx context.Context, data []byte) (TextResult, error) {
	if s.initErr != nil {
		return TextResult{}, ErrServiceUnavailable
	}
	return s.extractor.ExtractText(ctx, data)
}

// Process runs the whole pipeline. Extraction failure aborts the call; a
// suggestion failure for one item is absorbed and leaves that item with an
// empty list. DetectedItems order always matches line order in the raw text,
// regardless of which lookups finish first.
func (s *Service) Process(ctx context.Context, data []byte) (ProcessedResult, error) {
	start := time.Now()
	if s.initErr != nil {
		return ProcessedResult{}, ErrServiceUnavailable
	}

	tr, err := s.extractor.ExtractText(ctx, data)
	if err != nil {
		return ProcessedResult{}, err
	}

	items := s.suggestForLines(ctx, ExtractItems(tr.ExtractedText))

	return ProcessedResult{
		RawText:            tr.ExtractedText,
		DetectedItems:      items,
		TotalItemsDetected: len(items),
		ProcessingTimeMS:   time.Since(start).Milliseconds(),
	}, nil
}

// ProcessText runs parsing and matching over already-extracted text. It works
// even when the OCR runtime is missing, since no extraction is involved.
func (s *Service) ProcessText(ctx context.Context, rawText string) (ProcessedResult, error) {
	start := time.Now()
	items := s.suggestForLines(ctx, ExtractItems(rawText))
	return ProcessedResult{
		RawText:            rawText,
		DetectedItems:      items,
		TotalItemsDetected: len(items),
		ProcessingTimeMS:   time.Since(start).Milliseconds(),
	}, nil
}

// suggestForLines fans catalog lookups out per item and writes each result
// into its own slot, so completion order never reorders the items.
func (s *Service) suggestForLines(ctx context.Context, lines []ParsedLine) []Item {
	items := make([]Item, len(lines))
	var wg sync.WaitGroup
	for i, ln := range lines {
		items[i] = Item{
			DetectedText: ln.Name,
			Quantity:     ln.Quantity,
			Unit:         ln.Unit,
			Price:        ln.Price,
			Suggestions:  []Suggestion{},
		}
		wg.Add(1)
		go func(idx int, name string) {
			defer wg.Done()
			if sugs := s.matcher.Suggest(ctx, name, s.maxSuggestions); len(sugs) > 0 {
				items[idx].Suggestions = sugs
			}
		}(i, ln.Name)
	}
	wg.Wait()
	return items
}
