package directory

import "sort"

// Tagged is any record exposing note tags.
type Tagged interface {
	Tags() []string
}

// AvailableTags returns the sorted, de-duplicated union of all tags found
// across the records' notes. Tags keep the case they were entered with;
// order is lexicographic. Recompute whenever the source collection changes.
func AvailableTags[T Tagged](records []T) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		for _, t := range r.Tags() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
