package directory

import (
	"fmt"
	"strings"
	"time"
)

// Note is a free-form annotation attached to a contact or server.
// Tags carry their original casing; comparisons elsewhere are case-sensitive
// on purpose so the tag list shows what the user actually typed.
type Note struct {
	Body      string    `json:"body"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Contact is a directory entry for a person.
// SearchString is derived at ingestion time and never recomputed in place;
// a contact with stale search text is a data bug, not a legal state.
type Contact struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Title        string    `json:"title,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	BusinessArea string    `json:"business_area,omitempty"`
	Groups       []string  `json:"groups,omitempty"`
	Notes        []Note    `json:"notes,omitempty"`
	Manual       bool      `json:"manual,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`

	SearchString string `json:"-"`
}

// Key returns the contact's stable identity: the lower-cased email.
func (c Contact) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Email))
}

// SearchText returns the precomputed search blob.
func (c Contact) SearchText() string {
	return c.SearchString
}

// GroupLabel returns the sortable label for the contact's group memberships.
func (c Contact) GroupLabel() string {
	return strings.ToLower(strings.Join(c.Groups, ", "))
}

// Tags returns the union of tags across the contact's notes, in note order.
func (c Contact) Tags() []string {
	return noteTags(c.Notes)
}

// IngestContact computes the derived search string and returns the contact.
// Every contact entering the system goes through here exactly once.
func IngestContact(c Contact) Contact {
	c.SearchString = buildSearchString(
		c.Name, c.Email, c.Title, c.Phone, c.BusinessArea,
		strings.Join(c.Groups, " "),
	)
	return c
}

// Server is a directory entry for a machine.
type Server struct {
	Name         string    `json:"name"`
	Owner        string    `json:"owner,omitempty"`
	BusinessArea string    `json:"business_area,omitempty"`
	Environment  string    `json:"environment,omitempty"`
	Description  string    `json:"description,omitempty"`
	Notes        []Note    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`

	SearchString string `json:"-"`
}

// Key returns the server's stable identity: the lower-cased name.
func (s Server) Key() string {
	return strings.ToLower(strings.TrimSpace(s.Name))
}

// SearchText returns the precomputed search blob.
func (s Server) SearchText() string {
	return s.SearchString
}

// Tags returns the union of tags across the server's notes, in note order.
func (s Server) Tags() []string {
	return noteTags(s.Notes)
}

// IngestServer computes the derived search string and returns the server.
func IngestServer(s Server) Server {
	s.SearchString = buildSearchString(
		s.Name, s.Owner, s.BusinessArea, s.Environment, s.Description,
	)
	return s
}

// Group is an on-call team or distribution group.
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Members     []string  `json:"members,omitempty"` // contact emails
	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`

	SearchString string `json:"-"`
}

// Key returns the group's stable identity: the lower-cased id.
func (g Group) Key() string {
	return strings.ToLower(strings.TrimSpace(g.ID))
}

// SearchText returns the precomputed search blob.
func (g Group) SearchText() string {
	return g.SearchString
}

// MemberLabel renders the member count with pluralization.
func (g Group) MemberLabel() string {
	if len(g.Members) == 1 {
		return "1 member"
	}
	return fmt.Sprintf("%d members", len(g.Members))
}

// IngestGroup computes the derived search string and returns the group.
func IngestGroup(g Group) Group {
	g.SearchString = buildSearchString(g.Name, g.ID, g.Description)
	return g
}

// Searchable is any record with a stable key and a precomputed search blob.
type Searchable interface {
	Key() string
	SearchText() string
}

func buildSearchString(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

func noteTags(notes []Note) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, n := range notes {
		for _, t := range n.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
