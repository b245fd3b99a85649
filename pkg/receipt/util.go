package receipt

import "strings"

// normalizeExtracted trims the text and collapses intra-line whitespace while
// preserving line breaks; the parser works line by line.
func normalizeExtracted(t string) string {
	t = strings.ReplaceAll(t, "\r\n", "\n")
	lines := strings.Split(t, "\n")
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		out = append(out, strings.Join(strings.Fields(ln), " "))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// snippet returns a shortened version of text for logging.
func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// titleCase upper-cases the first letter of each word and lower-cases the
// rest, so OCR shouting ("TOMATOES") and mixed case normalize the same way.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'a' && r[0] <= 'z' {
			r[0] = r[0] - 'a' + 'A'
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
