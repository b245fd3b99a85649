package receipt

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// fallbackConfidence is assigned when no pass yields per-word confidence
// data and the plain-text fallback is used instead.
const fallbackConfidence = 30.0

// passConfig names one tesseract configuration attempt. Passes run in slice
// order; the first one returning word-level data wins.
type passConfig struct {
	name   string
	psm    gosseract.PageSegMode
	setPSM bool
}

// Engine runs tesseract over preprocessed receipt images. The native OCR
// call is CPU-bound, so concurrent extractions are limited by a slot pool
// sized to the CPU count.
type Engine struct {
	passes     []passConfig
	passBudget time.Duration
	slots      chan struct{}
}

// NewEngine verifies the tesseract runtime is reachable and builds the
// ordered pass list: a dense-receipt mode first, then two fallback page
// segmentation modes, then the engine default.
func NewEngine() (*Engine, error) {
	probe := gosseract.NewClient()
	version := probe.Version()
	_ = probe.Close()
	if strings.TrimSpace(version) == "" {
		return nil, fmt.Errorf("%w: tesseract runtime not found", ErrDependenciesMissing)
	}
	return &Engine{
		passes: []passConfig{
			{name: "receipt", psm: gosseract.PSM_SINGLE_BLOCK, setPSM: true},
			{name: "sparse", psm: gosseract.PSM_SPARSE_TEXT, setPSM: true},
			{name: "single-column", psm: gosseract.PSM_SINGLE_COLUMN, setPSM: true},
			{name: "default"},
		},
		passBudget: 20 * time.Second,
		slots:      make(chan struct{}, runtime.NumCPU()),
	}, nil
}

type passOutcome struct {
	text  string
	words []gosseract.BoundingBox
	err   error
}

// ExtractText decodes, preprocesses and OCRs an image. Pass errors are never
// fatal individually; only exhaustion of every pass plus the plain-text
// fallback fails the call. Timing covers preprocessing too.
func (e *Engine) ExtractText(ctx context.Context, data []byte) (TextResult, error) {
	start := time.Now()

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return TextResult{}, fmt.Errorf("%w: decode image: %v", ErrProcessingFailed, err)
	}
	prepared := prepareForOCR(img)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, prepared, imaging.PNG); err != nil {
		return TextResult{}, fmt.Errorf("%w: encode preprocessed image: %v", ErrProcessingFailed, err)
	}
	encoded := buf.Bytes()

	select {
	case e.slots <- struct{}{}:
		defer func() { <-e.slots }()
	case <-ctx.Done():
		return TextResult{}, ctx.Err()
	}

	for _, p := range e.passes {
		if ctx.Err() != nil {
			return TextResult{}, ctx.Err()
		}
		out, ok := e.runPassBounded(ctx, p, encoded)
		if !ok {
			continue
		}
		conf := meanWordConfidence(out.words)
		text := normalizeExtracted(out.text)
		log.Printf("OCR pass=%s words=%d conf=%.1f", p.name, len(out.words), conf)
		return TextResult{
			ExtractedText:    text,
			Confidence:       conf,
			ProcessingTimeMS: time.Since(start).Milliseconds(),
		}, nil
	}

	// No pass produced word data; fall back to a plain text call with a
	// conservative default confidence.
	text, err := plainText(encoded)
	if err != nil {
		return TextResult{}, fmt.Errorf("%w: all extraction passes failed: %v", ErrProcessingFailed, err)
	}
	log.Printf("OCR fallback plain-text used len=%d", len(text))
	return TextResult{
		ExtractedText:    normalizeExtracted(text),
		Confidence:       fallbackConfidence,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

// runPassBounded runs one pass under the per-pass budget. A tesseract call
// cannot be interrupted mid-flight; on timeout the goroutine finishes
// naturally and its result is dropped.
func (e *Engine) runPassBounded(ctx context.Context, p passConfig, encoded []byte) (passOutcome, bool) {
	ch := make(chan passOutcome, 1)
	go func() { ch <- runPass(p, encoded) }()
	select {
	case out := <-ch:
		if out.err != nil {
			log.Printf("OCR pass=%s failed: %v", p.name, out.err)
			return passOutcome{}, false
		}
		if len(out.words) == 0 {
			log.Printf("OCR pass=%s returned no word data", p.name)
			return passOutcome{}, false
		}
		return out, true
	case <-time.After(e.passBudget):
		log.Printf("OCR pass=%s exceeded budget %s", p.name, e.passBudget)
		return passOutcome{}, false
	case <-ctx.Done():
		return passOutcome{}, false
	}
}

func runPass(p passConfig, encoded []byte) passOutcome {
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	if p.setPSM {
		if err := client.SetPageSegMode(p.psm); err != nil {
			return passOutcome{err: fmt.Errorf("set psm: %w", err)}
		}
	}
	if err := client.SetImageFromBytes(encoded); err != nil {
		return passOutcome{err: fmt.Errorf("set image: %w", err)}
	}
	words, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return passOutcome{err: fmt.Errorf("word boxes: %w", err)}
	}
	text, err := client.Text()
	if err != nil {
		// word data survived; rebuild the text from it rather than failing the pass
		text = joinWords(words)
	}
	return passOutcome{text: text, words: words}
}

func plainText(encoded []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	if err := client.SetImageFromBytes(encoded); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	return client.Text()
}

// meanWordConfidence averages confidences strictly greater than zero;
// zero/placeholder words are excluded rather than counted as evidence.
func meanWordConfidence(words []gosseract.BoundingBox) float64 {
	var sum float64
	var n int
	for _, w := range words {
		if w.Confidence > 0 {
			sum += w.Confidence
			n++
		}
	}
	if n == 0 {
		return fallbackConfidence
	}
	mean := sum / float64(n)
	if mean > 100 {
		mean = 100
	}
	return mean
}

func joinWords(words []gosseract.BoundingBox) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Word); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}
