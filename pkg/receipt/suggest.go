package receipt

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/arbovm/levenshtein"
)

const (
	// suggestionFloor: candidates scoring below this are never materialized.
	suggestionFloor = 30.0
	// verbatimWordScore is awarded when a whole candidate word appears
	// verbatim inside the item text.
	verbatimWordScore = 80.0
	// DefaultMaxSuggestions bounds the ranked list per item.
	DefaultMaxSuggestions = 3
)

// Matcher ranks fuzzy catalog matches for detected item text. It never
// returns an error: any catalog failure degrades to an empty list for that
// item alone.
type Matcher struct {
	catalog CatalogSearcher
	timeout time.Duration
}

func NewMatcher(catalog CatalogSearcher) *Matcher {
	return &Matcher{catalog: catalog, timeout: 3 * time.Second}
}

// Suggest queries the catalog with the cleaned item text and returns up to
// max suggestions, sorted descending by score with catalog order breaking
// ties. Scores below the floor are dropped entirely.
func (m *Matcher) Suggest(ctx context.Context, itemText string, max int) []Suggestion {
	if max <= 0 {
		max = DefaultMaxSuggestions
	}
	if strings.TrimSpace(itemText) == "" {
		return nil
	}
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	cands, err := m.catalog.SearchIngredients(cctx, itemText)
	if err != nil {
		log.Printf("suggest: catalog lookup failed for %q: %v", snippet(itemText, 60), err)
		return nil
	}
	out := make([]Suggestion, 0, len(cands))
	for _, c := range cands {
		score := matchScore(itemText, c.Name)
		if score < suggestionFloor {
			continue
		}
		if score > 100 {
			score = 100
		}
		out = append(out, Suggestion{
			IngredientID:    c.ID,
			IngredientName:  c.Name,
			ConfidenceScore: score,
			DetectedText:    itemText,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ConfidenceScore > out[j].ConfidenceScore
	})
	if len(out) > max {
		out = out[:max]
	}
	return out
}

// matchScore is the maximum of three signals: whole-string similarity, best
// pairwise token similarity, and the fixed verbatim-word score.
func matchScore(itemText, candidate string) float64 {
	a := strings.ToLower(strings.TrimSpace(itemText))
	b := strings.ToLower(strings.TrimSpace(candidate))
	best := similarityRatio(a, b)
	aWords := strings.Fields(a)
	bWords := strings.Fields(b)
	for _, wa := range aWords {
		for _, wb := range bWords {
			if s := similarityRatio(wa, wb); s > best {
				best = s
			}
		}
	}
	for _, wb := range bWords {
		// very short words ("of", "in") would match almost anything
		if len(wb) >= 3 && strings.Contains(a, wb) && verbatimWordScore > best {
			best = verbatimWordScore
		}
	}
	return best
}

// similarityRatio scales edit distance to a 0-100 similarity score.
func similarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	d := levenshtein.Distance(a, b)
	if d >= n {
		return 0
	}
	return (1 - float64(d)/float64(n)) * 100
}
