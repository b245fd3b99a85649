package receipt

import "testing"

func TestParseLineQuantityUnitPrice(t *testing.T) {
	items := ExtractItems("Tomatoes (2 lbs) $3.98")
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	it := items[0]
	if it.Name != "Tomatoes" {
		t.Fatalf("expected name Tomatoes got %q", it.Name)
	}
	if it.Quantity == nil || *it.Quantity != 2.0 {
		t.Fatalf("expected quantity 2.0 got %v", it.Quantity)
	}
	if it.Unit == nil || *it.Unit != "lb" {
		t.Fatalf("expected unit lb got %v", it.Unit)
	}
	if it.Price == nil || *it.Price != 3.98 {
		t.Fatalf("expected price 3.98 got %v", it.Price)
	}
}

func TestParseGallonLine(t *testing.T) {
	items := ExtractItems("Milk (1 gallon) $3.29")
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	it := items[0]
	if it.Name != "Milk" || it.Quantity == nil || *it.Quantity != 1.0 {
		t.Fatalf("unexpected item %+v", it)
	}
	if it.Unit == nil || *it.Unit != "gallon" {
		t.Fatalf("expected unit gallon got %v", it.Unit)
	}
	if it.Price == nil || *it.Price != 3.29 {
		t.Fatalf("expected price 3.29 got %v", it.Price)
	}
}

func TestCorrectsGarbledLine(t *testing.T) {
	// OCR mangled "Tomatoes (2 lbs) $3.98"; name and unit are corrected by
	// the static tables, and the three-digit undotted price stays integer.
	items := ExtractItems("Tomatnes (2 its) $398")
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	it := items[0]
	if it.Name != "Tomatoes" {
		t.Fatalf("expected corrected name Tomatoes got %q", it.Name)
	}
	if it.Unit == nil || *it.Unit != "lb" {
		t.Fatalf("expected corrected unit lb got %v", it.Unit)
	}
	if it.Price == nil || *it.Price != 398.0 {
		t.Fatalf("expected price 398.0 got %v", it.Price)
	}
}

func TestPriceDecimalInsertion(t *testing.T) {
	// four-plus digit runs get a decimal two from the right; three-digit
	// runs stay integer amounts
	items := ExtractItems("Chicken Breast $1299")
	if len(items) != 1 || items[0].Price == nil || *items[0].Price != 12.99 {
		t.Fatalf("expected 12.99 got %+v", items)
	}
	items = ExtractItems("Tomatoes $398")
	if len(items) != 1 || items[0].Price == nil || *items[0].Price != 398.0 {
		t.Fatalf("expected 398.0 got %+v", items)
	}
}

func TestBoilerplateOnlyReceipt(t *testing.T) {
	raw := "FRESH MARKET GROCERY\n123 Main Street\nSubtotal: $15.77\nTotal: $17.03"
	items := ExtractItems(raw)
	if len(items) != 0 {
		t.Fatalf("expected no items from boilerplate, got %+v", items)
	}
}

func TestBoilerplateNeverBecomesItem(t *testing.T) {
	raw := "Milk (1 gallon) $3.29\nSubtotal: $3.29\nTax: $0.26\nTotal: $3.55\nThank you for shopping"
	items := ExtractItems(raw)
	if len(items) != 1 {
		t.Fatalf("expected only the milk line to survive, got %+v", items)
	}
	if items[0].Name != "Milk" {
		t.Fatalf("unexpected surviving item %q", items[0].Name)
	}
}

func TestEmptyAndWhitespaceInput(t *testing.T) {
	if items := ExtractItems(""); len(items) != 0 {
		t.Fatalf("expected empty result got %+v", items)
	}
	if items := ExtractItems("   \n\t \n "); len(items) != 0 {
		t.Fatalf("expected empty result got %+v", items)
	}
}

func TestKeywordLineWithoutNumbers(t *testing.T) {
	items := ExtractItems("Organic Spinach")
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	it := items[0]
	if it.Name != "Organic Spinach" {
		t.Fatalf("unexpected name %q", it.Name)
	}
	if it.Quantity != nil || it.Unit != nil || it.Price != nil {
		t.Fatalf("expected nil quantity/unit/price got %+v", it)
	}
}

func TestParserIdempotentOnCleanOutput(t *testing.T) {
	first := ExtractItems("Tomatoes (2 lbs) $3.98")
	if len(first) != 1 {
		t.Fatalf("expected 1 item got %d", len(first))
	}
	second := ExtractItems(first[0].Name)
	if len(second) != 1 {
		t.Fatalf("re-parse expected 1 item got %d", len(second))
	}
	if second[0].Name != first[0].Name {
		t.Fatalf("re-parse changed name: %q -> %q", first[0].Name, second[0].Name)
	}
}

func TestZeroQuantityDroppedToNil(t *testing.T) {
	items := ExtractItems("Tomatoes (0 lbs) $3.98")
	if len(items) != 1 {
		t.Fatalf("expected 1 item got %d", len(items))
	}
	if items[0].Quantity != nil {
		t.Fatalf("expected nil quantity got %v", *items[0].Quantity)
	}
	if items[0].Unit == nil || *items[0].Unit != "lb" {
		t.Fatalf("expected unit lb got %v", items[0].Unit)
	}
}

func TestImplausiblePriceRejected(t *testing.T) {
	// three decimals cannot round-trip as a currency amount
	if v, ok := parsePrice("3.985"); ok {
		t.Fatalf("expected rejection got %v", v)
	}
	if v, ok := parsePrice("0"); ok {
		t.Fatalf("expected rejection of zero got %v", v)
	}
}
