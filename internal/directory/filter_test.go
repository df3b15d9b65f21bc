package directory

import "testing"

func taggedContacts() []Contact {
	return []Contact{
		IngestContact(Contact{Email: "alice@test.com", Name: "Alice", Notes: []Note{
			{Body: "on-call escalation", Tags: []string{"oncall", "vip"}},
		}}),
		IngestContact(Contact{Email: "bob@test.com", Name: "Bob", Notes: []Note{
			{Body: "knows the batch system", Tags: []string{"batch"}},
		}}),
		IngestContact(Contact{Email: "charlie@test.com", Name: "Charlie"}),
	}
}

func TestApplyFiltersNoneActive(t *testing.T) {
	contacts := taggedContacts()
	f := NewFilterState()

	got := ApplyFilters(contacts, f, nil)
	if len(got) != len(contacts) {
		t.Errorf("no active filters should pass everything, got %v", contactKeys(got))
	}
}

func TestApplyFiltersHasNote(t *testing.T) {
	contacts := taggedContacts()
	f := NewFilterState()
	f.HasNoteFilter = true

	got := ApplyFilters(contacts, f, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 contacts with notes, got %v", contactKeys(got))
	}
	for _, c := range got {
		if len(c.Notes) == 0 {
			t.Errorf("contact without notes passed has-note filter: %s", c.Key())
		}
	}
}

func TestApplyFiltersTagMembership(t *testing.T) {
	contacts := taggedContacts()
	f := NewFilterState()
	f.ToggleTag("oncall")

	got := ApplyFilters(contacts, f, nil)
	if len(got) != 1 || got[0].Key() != "alice@test.com" {
		t.Errorf("tag filter = %v, want [alice@test.com]", contactKeys(got))
	}
}

func TestApplyFiltersPredicatesAnd(t *testing.T) {
	contacts := taggedContacts()
	extras := map[string]Predicate{
		"manual-only": func(c Contact) bool { return c.Manual },
	}

	f := NewFilterState()
	f.ToggleTag("oncall")
	f.ToggleExtra("manual-only")

	// Alice carries the tag but is not manual: the AND must reject her
	got := ApplyFilters(contacts, f, extras)
	if len(got) != 0 {
		t.Errorf("predicates must AND together, got %v", contactKeys(got))
	}
}

func TestApplyFiltersUntaggedNeverMatchesTagFilter(t *testing.T) {
	contacts := taggedContacts()
	f := NewFilterState()
	f.ToggleTag("oncall")
	f.ToggleTag("batch")

	for _, c := range ApplyFilters(contacts, f, nil) {
		if c.Key() == "charlie@test.com" {
			t.Error("contact without notes satisfied a tag filter")
		}
	}
}

func TestToggleTag(t *testing.T) {
	f := NewFilterState()
	f.ToggleTag("vip")
	if _, ok := f.SelectedTags["vip"]; !ok {
		t.Fatal("tag not selected after toggle")
	}
	f.ToggleTag("vip")
	if len(f.SelectedTags) != 0 {
		t.Error("second toggle should deselect")
	}
}

func TestAnyActiveAndClearAll(t *testing.T) {
	f := NewFilterState()
	if f.AnyActive() {
		t.Fatal("fresh state should have no active filters")
	}

	f.ToggleTag("vip")
	if !f.AnyActive() {
		t.Error("selected tag should count as active")
	}

	f.ClearAll()
	f.HasNoteFilter = true
	if !f.AnyActive() {
		t.Error("has-note flag should count as active")
	}

	f.ClearAll()
	f.ToggleExtra("manual-only")
	if !f.AnyActive() {
		t.Error("active extra should count as active")
	}

	f.ClearAll()
	if f.AnyActive() {
		t.Error("ClearAll should reset tags, extras and the note flag")
	}
}

func TestPruneTags(t *testing.T) {
	f := NewFilterState()
	f.ToggleTag("oncall")
	f.ToggleTag("batch")

	// batch disappeared from the source collection
	f.PruneTags([]string{"oncall", "vip"})

	if _, ok := f.SelectedTags["batch"]; ok {
		t.Error("vanished tag should be pruned")
	}
	if _, ok := f.SelectedTags["oncall"]; !ok {
		t.Error("still-available tag should survive pruning")
	}
}

func TestPruneTagsAfterSourceChange(t *testing.T) {
	contacts := taggedContacts()
	f := NewFilterState()
	f.ToggleTag("batch")

	// Remove the last record carrying "batch", recompute, prune
	var without []Contact
	for _, c := range contacts {
		if c.Key() != "bob@test.com" {
			without = append(without, c)
		}
	}
	f.PruneTags(AvailableTags(without))

	if len(f.SelectedTags) != 0 {
		t.Errorf("selection should be empty after its tag vanished, got %v", f.SelectedTags)
	}
}
