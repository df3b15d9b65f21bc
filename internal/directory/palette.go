package directory

import (
	"regexp"
	"strings"
)

// PaletteResultType distinguishes the entity behind a palette row.
type PaletteResultType string

const (
	PaletteContact PaletteResultType = "contact"
	PaletteServer  PaletteResultType = "server"
	PaletteGroup   PaletteResultType = "group"
	PaletteAction  PaletteResultType = "action"
)

// PaletteResult is the common shape every palette match maps into.
type PaletteResult struct {
	ID       string
	Type     PaletteResultType
	Title    string
	Subtitle string
}

// MaxPaletteResults caps the merged result list.
const MaxPaletteResults = 15

// Fixed navigation action ids.
const (
	ActionGoContacts = "nav:contacts"
	ActionGoTeams    = "nav:teams"
	ActionGoServers  = "nav:servers"
	ActionGoWeather  = "nav:weather"
	ActionGoChat     = "nav:chat"

	ActionAddManual     = "action:add-manual"
	ActionCreateContact = "action:create-contact"
)

// navigationActions are the five fixed tab jumps, returned verbatim for a
// blank query.
var navigationActions = []PaletteResult{
	{ID: ActionGoContacts, Type: PaletteAction, Title: "Contacts", Subtitle: "Go to contacts"},
	{ID: ActionGoTeams, Type: PaletteAction, Title: "On-call teams", Subtitle: "Go to teams"},
	{ID: ActionGoServers, Type: PaletteAction, Title: "Servers", Subtitle: "Go to servers"},
	{ID: ActionGoWeather, Type: PaletteAction, Title: "Weather", Subtitle: "Go to weather"},
	{ID: ActionGoChat, Type: PaletteAction, Title: "Assistant", Subtitle: "Go to chat"},
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CommandSearch merges matches across contacts, servers and groups into one
// ordered, capped result list. A blank query returns exactly the fixed
// navigation actions. A query that parses as an email address returns quick
// actions for it instead of collection matches. Category order and natural
// collection order are the only ranking.
func CommandSearch(query string, contacts []Contact, servers []Server, groups []Group) []PaletteResult {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		out := make([]PaletteResult, len(navigationActions))
		copy(out, navigationActions)
		return out
	}

	if emailPattern.MatchString(trimmed) {
		return emailActions(trimmed, contacts)
	}

	var out []PaletteResult
	for _, c := range Search(contacts, trimmed) {
		out = append(out, PaletteResult{
			ID:       c.Key(),
			Type:     PaletteContact,
			Title:    c.Name,
			Subtitle: contactSubtitle(c),
		})
	}
	for _, s := range Search(servers, trimmed) {
		out = append(out, PaletteResult{
			ID:       s.Key(),
			Type:     PaletteServer,
			Title:    s.Name,
			Subtitle: serverSubtitle(s),
		})
	}
	for _, g := range Search(groups, trimmed) {
		out = append(out, PaletteResult{
			ID:       g.Key(),
			Type:     PaletteGroup,
			Title:    g.Name,
			Subtitle: g.MemberLabel(),
		})
	}

	if len(out) > MaxPaletteResults {
		out = out[:MaxPaletteResults]
	}
	return out
}

// emailActions builds the quick actions for an email-shaped query. Adding
// it as a manual entry is always offered; creating a contact only when no
// existing contact already owns that address.
func emailActions(email string, contacts []Contact) []PaletteResult {
	out := []PaletteResult{
		{
			ID:       ActionAddManual,
			Type:     PaletteAction,
			Title:    "Add " + email + " as manual entry",
			Subtitle: "Track this address without a directory record",
		},
	}

	key := strings.ToLower(email)
	for _, c := range contacts {
		if c.Key() == key {
			return out
		}
	}

	return append(out, PaletteResult{
		ID:       ActionCreateContact,
		Type:     PaletteAction,
		Title:    "Create contact " + email,
		Subtitle: "New directory record from this address",
	})
}

func contactSubtitle(c Contact) string {
	if c.Email != "" {
		return c.Email
	}
	return c.Title
}

func serverSubtitle(s Server) string {
	if s.BusinessArea != "" {
		return s.BusinessArea
	}
	return s.Owner
}
