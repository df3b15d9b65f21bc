package directory

import (
	"strings"
	"testing"
)

func TestIngestContactBuildsSearchString(t *testing.T) {
	c := IngestContact(Contact{
		Email:        "Alice@Test.com",
		Name:         "Alice Anders",
		Title:        "Engineer",
		Phone:        "555-0100",
		BusinessArea: "Payments",
		Groups:       []string{"Core", "Oncall"},
	})

	for _, want := range []string{"alice anders", "alice@test.com", "engineer", "555-0100", "payments", "core", "oncall"} {
		if !strings.Contains(c.SearchString, want) {
			t.Errorf("search string missing %q: %q", want, c.SearchString)
		}
	}
	if c.SearchString != strings.ToLower(c.SearchString) {
		t.Error("search string must be lower-cased")
	}
}

func TestContactKeyLowercased(t *testing.T) {
	c := Contact{Email: " Alice@Test.COM "}
	if c.Key() != "alice@test.com" {
		t.Errorf("Key() = %q", c.Key())
	}
}

func TestServerAndGroupKeys(t *testing.T) {
	s := Server{Name: "DB-Prod-01"}
	if s.Key() != "db-prod-01" {
		t.Errorf("server Key() = %q", s.Key())
	}

	g := Group{ID: "Oncall-Core"}
	if g.Key() != "oncall-core" {
		t.Errorf("group Key() = %q", g.Key())
	}
}

func TestContactTagsDeduplicated(t *testing.T) {
	c := Contact{Notes: []Note{
		{Tags: []string{"vip", "oncall"}},
		{Tags: []string{"vip"}},
	}}

	tags := c.Tags()
	if len(tags) != 2 {
		t.Errorf("Tags() = %v, want deduplicated pair", tags)
	}
}

func TestIngestServerSkipsBlankFields(t *testing.T) {
	s := IngestServer(Server{Name: "web-01"})
	if s.SearchString != "web-01" {
		t.Errorf("blank fields should not pad the search string: %q", s.SearchString)
	}
}

func TestMergeContactZeroFieldsUntouched(t *testing.T) {
	base := IngestContact(Contact{Email: "a@test.com", Name: "Ann", Title: "Engineer", Phone: "1"})
	merged := MergeContact(base, Contact{Email: "a@test.com", Phone: "2"})

	if merged.Phone != "2" {
		t.Error("patched field should change")
	}
	if merged.Name != "Ann" || merged.Title != "Engineer" {
		t.Error("zero patch fields must leave base values alone")
	}
	if merged.SearchString != base.SearchString {
		t.Error("merge must not recompute the search string")
	}
}
