package directory

import "strings"

// Search returns the records whose precomputed search string contains text,
// case-insensitively. Blank or whitespace-only text matches everything.
// Input order is preserved; the input slice is never mutated.
func Search[T Searchable](records []T, text string) []T {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		out := make([]T, len(records))
		copy(out, records)
		return out
	}

	var out []T
	for _, r := range records {
		if strings.Contains(r.SearchText(), needle) {
			out = append(out, r)
		}
	}
	return out
}
