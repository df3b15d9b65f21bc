package directory

import (
	"reflect"
	"testing"
)

func TestAvailableTagsSortedDeduplicated(t *testing.T) {
	contacts := []Contact{
		{Email: "a@test.com", Notes: []Note{{Tags: []string{"vip", "oncall"}}}},
		{Email: "b@test.com", Notes: []Note{{Tags: []string{"batch", "vip"}}}},
		{Email: "c@test.com"},
	}

	got := AvailableTags(contacts)
	want := []string{"batch", "oncall", "vip"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableTags = %v, want %v", got, want)
	}
}

func TestAvailableTagsKeepsOriginalCase(t *testing.T) {
	contacts := []Contact{
		{Email: "a@test.com", Notes: []Note{{Tags: []string{"VIP", "vip"}}}},
	}

	got := AvailableTags(contacts)
	// Casing is preserved, so VIP and vip are distinct tags
	want := []string{"VIP", "vip"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableTags = %v, want %v", got, want)
	}
}

func TestAvailableTagsEmpty(t *testing.T) {
	if got := AvailableTags([]Contact{}); len(got) != 0 {
		t.Errorf("expected no tags, got %v", got)
	}
}

func TestAvailableTagsAcrossNotes(t *testing.T) {
	servers := []Server{
		{Name: "s1", Notes: []Note{{Tags: []string{"legacy"}}, {Tags: []string{"decom"}}}},
	}

	got := AvailableTags(servers)
	want := []string{"decom", "legacy"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AvailableTags = %v, want %v", got, want)
	}
}
