package receipt

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// minLineLen drops fragments too short to be an item ("a", "--", stray
// punctuation the engine sometimes emits between columns).
const minLineLen = 3

// ParsedLine is one surviving receipt line before catalog matching.
type ParsedLine struct {
	Name     string
	Quantity *float64
	Unit     *string
	Price    *float64
}

var (
	// "(2 lbs)", "(1 gallon)", "(12 count)" — quantity plus unit token; the
	// unit may carry digit mis-reads ("1bs") but needs at least one letter.
	qtyUnitRE = regexp.MustCompile(`\(\s*(\d+(?:\.\d+)?)\s*([0-9]*[A-Za-z][A-Za-z0-9]*)\s*\)`)
	// "$3.98", "$ 1299" — currency-marked price
	priceRE = regexp.MustCompile(`\$\s*(\d+(?:[.,]\d{1,2})?)`)
	// trailing bare numeric run with no currency marker, as receipts often
	// print the rightmost column without the $ sign
	barePriceRE = regexp.MustCompile(`(?:^|\s)(\d{1,6}\.\d{2}|\d{3,6})$`)
)

// boilerplatePatterns reject store header/footer and totals lines before any
// extraction runs. Rejection wins over the keyword allow-list so a
// "Subtotal: $15.77" line never becomes an item.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(sub\s*-?\s*total|tax|total|change|balance|amount\s+due|tender|cash|credit|debit|visa|mastercard)\b`),
	regexp.MustCompile(`(?i)\b(receipt|invoice|transaction|register|cashier|clerk|lane|terminal|thank\s+you|welcome|return\s+policy|survey)\b`),
	regexp.MustCompile(`(?i)\b(store|market|grocery|supermarket|mart)\b`),
	regexp.MustCompile(`(?i)^\d+\s+\S+.*\b(street|st|ave|avenue|road|rd|blvd|boulevard|drive|dr|lane|ln|suite)\b`),
	regexp.MustCompile(`\(?\d{3}\)?[\s.-]\d{3}[\s.-]\d{4}`),
	regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
}

// foodKeywords is the allow-list half of line classification: a
// non-boilerplate line survives only if it mentions a food-domain word or
// carries a quantity/price pattern. Substring matching keeps plurals and
// compounds ("tomatoes", "cherry tomato mix") covered.
var foodKeywords = []string{
	"milk", "bread", "egg", "cheese", "butter", "yogurt", "cream",
	"tomato", "potato", "onion", "garlic", "carrot", "pepper", "lettuce",
	"spinach", "broccoli", "celery", "cucumber", "mushroom", "cabbage",
	"apple", "banana", "orange", "grape", "lemon", "lime", "berry",
	"berries", "melon", "peach", "pear", "avocado", "mango",
	"chicken", "beef", "pork", "turkey", "ham", "bacon", "sausage",
	"fish", "salmon", "tuna", "shrimp",
	"rice", "pasta", "noodle", "flour", "sugar", "salt", "cereal", "oat",
	"bean", "corn", "soup", "sauce", "oil", "vinegar", "spice",
	"juice", "coffee", "tea", "soda", "water", "honey", "jam",
	"nut", "almond", "peanut", "chocolate", "snack", "chips",
}

// ExtractItems turns raw multi-line OCR text into candidate item records.
// It filters instead of failing: malformed lines are dropped, never raised.
// Order of the result matches line order in the input.
func ExtractItems(rawText string) []ParsedLine {
	var out []ParsedLine
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < minLineLen {
			continue
		}
		if isBoilerplate(line) {
			continue
		}
		if !isCandidateItem(line) {
			continue
		}
		if item, ok := parseLine(line); ok {
			out = append(out, item)
		}
	}
	return out
}

func isBoilerplate(line string) bool {
	for _, re := range boilerplatePatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func isCandidateItem(line string) bool {
	low := strings.ToLower(line)
	for _, kw := range foodKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return qtyUnitRE.MatchString(line) || priceRE.MatchString(line) || barePriceRE.MatchString(line)
}

// parseLine extracts quantity/unit, price and the cleaned name from one
// surviving line. Either, both or neither of quantity and price may be
// present; non-positive values are dropped to nil.
func parseLine(line string) (ParsedLine, bool) {
	rest := line

	var qty *float64
	var unit *string
	if m := qtyUnitRE.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
			qty = &v
		}
		if u := normalizeUnit(m[2]); u != "" {
			unit = &u
		}
		rest = qtyUnitRE.ReplaceAllString(rest, " ")
	}

	var price *float64
	if m := priceRE.FindStringSubmatch(rest); m != nil {
		if v, ok := parsePrice(m[1]); ok {
			price = &v
		}
		rest = priceRE.ReplaceAllString(rest, " ")
	} else if m := barePriceRE.FindStringSubmatch(rest); m != nil {
		if v, ok := parsePrice(m[1]); ok {
			price = &v
		}
		rest = strings.TrimSuffix(strings.TrimSpace(rest), m[1])
	}

	name := cleanName(rest)
	if name == "" {
		return ParsedLine{}, false
	}
	return ParsedLine{Name: name, Quantity: qty, Unit: unit, Price: price}, true
}

// parsePrice validates and normalizes a matched price string.
//
// Undotted digit runs follow the documented asymmetry: four or more digits
// get a decimal inserted two from the right ("1299" -> 12.99) while a
// three-digit run stays an integer amount ("398" -> 398.0). See DESIGN.md
// for the rationale behind keeping that behavior.
func parsePrice(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ".") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			return 0, false
		}
		// must round-trip as a two-decimal currency amount
		if math.Abs(math.Round(v*100)/100-v) > 1e-9 {
			return 0, false
		}
		return v, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	if len(s) >= 4 {
		return float64(n) / 100, true
	}
	return float64(n), true
}

// normalizeUnit lower-cases the unit token and passes it through the static
// mis-read table; unknown units are kept as-is.
func normalizeUnit(tok string) string {
	u := strings.ToLower(strings.TrimSpace(tok))
	if c, ok := unitCorrections[u]; ok {
		return c
	}
	return u
}

// cleanName strips leftover markers from the line remainder, title-cases it
// and applies the product-name correction table.
func cleanName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '*', '#', '|', '@':
			return ' '
		}
		return r
	}, s)
	s = strings.Trim(strings.Join(strings.Fields(s), " "), " -:.,")
	if s == "" {
		return ""
	}
	return applyNameCorrections(titleCase(s))
}

func applyNameCorrections(name string) string {
	for _, c := range nameCorrections {
		name = strings.ReplaceAll(name, c.from, c.to)
	}
	return name
}
