package directory

// Predicate is a caller-supplied boolean filter over contacts. Extra
// predicates are registered under a name and toggled via FilterState.
type Predicate func(Contact) bool

// FilterState holds the complete query state for a collection view: search
// text, sort, selected tags, named extra filters and the has-note flag.
// The zero value is not usable; start from NewFilterState.
type FilterState struct {
	SearchText string
	SortKey    string
	Ascending  bool

	SelectedTags  map[string]struct{}
	ActiveExtras  map[string]struct{}
	HasNoteFilter bool
}

// NewFilterState returns the "no filter" state: blank search, name
// ascending, nothing selected.
func NewFilterState() *FilterState {
	return &FilterState{
		SortKey:      SortKeyName,
		Ascending:    true,
		SelectedTags: make(map[string]struct{}),
		ActiveExtras: make(map[string]struct{}),
	}
}

// HandleSort toggles direction when key is already the active sort key,
// otherwise switches to key and resets to ascending.
func (f *FilterState) HandleSort(key string) {
	if f.SortKey == key {
		f.Ascending = !f.Ascending
		return
	}
	f.SortKey = key
	f.Ascending = true
}

// ToggleTag adds tag to the selected set, or removes it if already selected.
func (f *FilterState) ToggleTag(tag string) {
	if _, ok := f.SelectedTags[tag]; ok {
		delete(f.SelectedTags, tag)
		return
	}
	f.SelectedTags[tag] = struct{}{}
}

// ToggleExtra toggles a named extra filter.
func (f *FilterState) ToggleExtra(name string) {
	if _, ok := f.ActiveExtras[name]; ok {
		delete(f.ActiveExtras, name)
		return
	}
	f.ActiveExtras[name] = struct{}{}
}

// AnyActive reports whether any filter is in effect: a selected tag, an
// active extra filter, or the has-note flag. Search text and sort are not
// filters for this purpose.
func (f *FilterState) AnyActive() bool {
	return len(f.SelectedTags) > 0 || len(f.ActiveExtras) > 0 || f.HasNoteFilter
}

// ClearAll resets tags, extras and the has-note flag in one step.
func (f *FilterState) ClearAll() {
	f.SelectedTags = make(map[string]struct{})
	f.ActiveExtras = make(map[string]struct{})
	f.HasNoteFilter = false
}

// PruneTags drops selected tags that no longer exist in available. A tag
// disappearing from the source collection is not an error; the selection
// silently shrinks.
func (f *FilterState) PruneTags(available []string) {
	if len(f.SelectedTags) == 0 {
		return
	}
	avail := make(map[string]struct{}, len(available))
	for _, t := range available {
		avail[t] = struct{}{}
	}
	for t := range f.SelectedTags {
		if _, ok := avail[t]; !ok {
			delete(f.SelectedTags, t)
		}
	}
}

// ApplyFilters returns the contacts satisfying every active predicate:
// tag membership, the has-note flag, and each active extra filter from
// extras. Predicates AND together. A contact with no notes never satisfies
// the has-note filter or any tag filter.
func ApplyFilters(contacts []Contact, f *FilterState, extras map[string]Predicate) []Contact {
	if !f.AnyActive() {
		out := make([]Contact, len(contacts))
		copy(out, contacts)
		return out
	}

	var out []Contact
	for _, c := range contacts {
		if !matchesFilters(c, f, extras) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesFilters(c Contact, f *FilterState, extras map[string]Predicate) bool {
	if f.HasNoteFilter && len(c.Notes) == 0 {
		return false
	}

	if len(f.SelectedTags) > 0 {
		if !hasAnySelectedTag(c, f.SelectedTags) {
			return false
		}
	}

	for name := range f.ActiveExtras {
		pred, ok := extras[name]
		if !ok {
			// Unknown extra filter name: nothing can satisfy it.
			return false
		}
		if !pred(c) {
			return false
		}
	}
	return true
}

func hasAnySelectedTag(c Contact, selected map[string]struct{}) bool {
	for _, t := range c.Tags() {
		if _, ok := selected[t]; ok {
			return true
		}
	}
	return false
}
