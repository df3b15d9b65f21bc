package directory

import "testing"

func testContacts() []Contact {
	return []Contact{
		IngestContact(Contact{Email: "alice@test.com", Name: "Alice Anders", Title: "Engineer", BusinessArea: "Payments"}),
		IngestContact(Contact{Email: "bob@test.com", Name: "Bob Berg", Title: "Operator", BusinessArea: "Core"}),
		IngestContact(Contact{Email: "charlie@test.com", Name: "Charlie Chaplin", Title: "Manager", BusinessArea: "Payments"}),
	}
}

func contactKeys(contacts []Contact) []string {
	keys := make([]string, len(contacts))
	for i, c := range contacts {
		keys[i] = c.Key()
	}
	return keys
}

func TestSearchCaseInsensitive(t *testing.T) {
	contacts := testContacts()

	for _, query := range []string{"bob", "BOB", "Bob Berg", "berg"} {
		got := Search(contacts, query)
		if len(got) != 1 || got[0].Key() != "bob@test.com" {
			t.Errorf("Search(%q) = %v, want [bob@test.com]", query, contactKeys(got))
		}
	}
}

func TestSearchMatchesAnyField(t *testing.T) {
	contacts := testContacts()

	got := Search(contacts, "payments")
	if len(got) != 2 {
		t.Fatalf("expected 2 payments matches, got %v", contactKeys(got))
	}
	if got[0].Key() != "alice@test.com" || got[1].Key() != "charlie@test.com" {
		t.Errorf("input order not preserved: %v", contactKeys(got))
	}
}

func TestSearchBlankMatchesEverything(t *testing.T) {
	contacts := testContacts()

	for _, query := range []string{"", "   ", "\t"} {
		got := Search(contacts, query)
		if len(got) != len(contacts) {
			t.Errorf("Search(%q) returned %d records, want %d", query, len(got), len(contacts))
		}
	}
}

func TestSearchNoMatch(t *testing.T) {
	got := Search(testContacts(), "zzyzx")
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", contactKeys(got))
	}
}

func TestSearchServersAndGroups(t *testing.T) {
	servers := []Server{
		IngestServer(Server{Name: "db-prod-01", Owner: "alice", Environment: "production"}),
		IngestServer(Server{Name: "app-dev-02", Owner: "bob", Environment: "dev"}),
	}
	if got := Search(servers, "PROD"); len(got) != 1 || got[0].Name != "db-prod-01" {
		t.Errorf("server search failed: got %v", got)
	}

	groups := []Group{
		IngestGroup(Group{ID: "oncall-core", Name: "Core On-call"}),
	}
	if got := Search(groups, "core"); len(got) != 1 {
		t.Errorf("group search failed: got %v", got)
	}
}
