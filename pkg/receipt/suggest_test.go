package receipt

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubCatalog struct {
	cands []Candidate
	err   error
}

func (s stubCatalog) SearchIngredients(ctx context.Context, query string) ([]Candidate, error) {
	return s.cands, s.err
}

func TestSuggestRankingAndFloor(t *testing.T) {
	cat := stubCatalog{cands: []Candidate{
		{ID: 1, Name: "Tomatoes"},
		{ID: 2, Name: "Tomato Paste"},
		{ID: 3, Name: "Zucchini"},
	}}
	m := NewMatcher(cat)
	sugs := m.Suggest(context.Background(), "Tomatoes", 3)
	if len(sugs) != 2 {
		t.Fatalf("expected 2 suggestions (zucchini below floor), got %+v", sugs)
	}
	if sugs[0].IngredientName != "Tomatoes" || sugs[0].ConfidenceScore != 100 {
		t.Fatalf("expected exact match first at 100, got %+v", sugs[0])
	}
	if sugs[1].IngredientName != "Tomato Paste" {
		t.Fatalf("expected Tomato Paste second, got %+v", sugs[1])
	}
	for i := 1; i < len(sugs); i++ {
		if sugs[i].ConfidenceScore > sugs[i-1].ConfidenceScore {
			t.Fatalf("suggestions not sorted descending: %+v", sugs)
		}
	}
}

func TestSuggestScoreBounds(t *testing.T) {
	cat := stubCatalog{cands: []Candidate{
		{ID: 1, Name: "Milk"},
		{ID: 2, Name: "Buttermilk"},
		{ID: 3, Name: "Almond Milk"},
	}}
	m := NewMatcher(cat)
	for _, s := range m.Suggest(context.Background(), "Whole Milk", 5) {
		if s.ConfidenceScore < suggestionFloor || s.ConfidenceScore > 100 {
			t.Fatalf("score out of bounds: %+v", s)
		}
		if s.DetectedText != "Whole Milk" {
			t.Fatalf("detected text not echoed: %+v", s)
		}
	}
}

func TestSuggestTruncationAndTieOrder(t *testing.T) {
	// every candidate shares the word "milk" so all score 100; ties keep
	// catalog order and the list truncates to max
	cat := stubCatalog{cands: []Candidate{
		{ID: 10, Name: "Whole Milk"},
		{ID: 11, Name: "Milk"},
		{ID: 12, Name: "Almond Milk"},
		{ID: 13, Name: "Oat Milk"},
	}}
	m := NewMatcher(cat)
	sugs := m.Suggest(context.Background(), "Milk", 3)
	if len(sugs) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(sugs))
	}
	want := []uint{10, 11, 12}
	for i, id := range want {
		if sugs[i].IngredientID != id {
			t.Fatalf("tie order broken at %d: %+v", i, sugs)
		}
	}
}

func TestSuggestCatalogErrorDegradesToEmpty(t *testing.T) {
	m := NewMatcher(stubCatalog{err: errors.New("connection refused")})
	if sugs := m.Suggest(context.Background(), "Garlic", 3); len(sugs) != 0 {
		t.Fatalf("expected empty suggestions on catalog error, got %+v", sugs)
	}
}

func TestSuggestEmptyItemText(t *testing.T) {
	m := NewMatcher(stubCatalog{cands: []Candidate{{ID: 1, Name: "Milk"}}})
	if sugs := m.Suggest(context.Background(), "   ", 3); len(sugs) != 0 {
		t.Fatalf("expected no suggestions for blank text, got %+v", sugs)
	}
}

func TestVerbatimWordSignal(t *testing.T) {
	// "garlic" appears verbatim inside the glued OCR token, which beats the
	// edit-distance signals
	got := matchScore("Garlicsalt", "Garlic")
	if got != verbatimWordScore {
		t.Fatalf("expected verbatim score %v got %v", verbatimWordScore, got)
	}
}

func TestSimilarityRatio(t *testing.T) {
	if v := similarityRatio("milk", "milk"); v != 100 {
		t.Fatalf("identical strings should score 100, got %v", v)
	}
	if v := similarityRatio("", "milk"); v != 0 {
		t.Fatalf("empty string should score 0, got %v", v)
	}
	v := similarityRatio("tomato", "tomatoes")
	if v <= 0 || v >= 100 {
		t.Fatalf("near match should land strictly between 0 and 100, got %v", v)
	}
	if !strings.Contains("tomatoes", "tomato") {
		t.Fatal("sanity")
	}
}
