package directory

import (
	"sort"
	"strings"
)

// Contact sort keys understood by SortContacts.
const (
	SortKeyName         = "name"
	SortKeyEmail        = "email"
	SortKeyTitle        = "title"
	SortKeyPhone        = "phone"
	SortKeyBusinessArea = "business_area"
	SortKeyGroups       = "groups"
)

// Server sort keys understood by SortServers.
const (
	ServerSortKeyName        = "name"
	ServerSortKeyOwner       = "owner"
	ServerSortKeyEnvironment = "environment"
)

// SortContacts returns a sorted copy of contacts. String fields compare
// case-insensitively; SortKeyGroups compares by the group-membership label
// rather than a raw field. The sort is stable: equal keys keep their
// relative input order. An unknown key sorts by name.
func SortContacts(contacts []Contact, key string, ascending bool) []Contact {
	out := make([]Contact, len(contacts))
	copy(out, contacts)

	sort.SliceStable(out, func(i, j int) bool {
		a := contactSortValue(out[i], key)
		b := contactSortValue(out[j], key)
		if ascending {
			return a < b
		}
		return a > b
	})
	return out
}

func contactSortValue(c Contact, key string) string {
	switch key {
	case SortKeyEmail:
		return strings.ToLower(c.Email)
	case SortKeyTitle:
		return strings.ToLower(c.Title)
	case SortKeyPhone:
		return strings.ToLower(c.Phone)
	case SortKeyBusinessArea:
		return strings.ToLower(c.BusinessArea)
	case SortKeyGroups:
		return c.GroupLabel()
	default:
		return strings.ToLower(c.Name)
	}
}

// SortServers returns a sorted copy of servers, stable, case-insensitive.
// An unknown key sorts by name.
func SortServers(servers []Server, key string, ascending bool) []Server {
	out := make([]Server, len(servers))
	copy(out, servers)

	sort.SliceStable(out, func(i, j int) bool {
		a := serverSortValue(out[i], key)
		b := serverSortValue(out[j], key)
		if ascending {
			return a < b
		}
		return a > b
	})
	return out
}

func serverSortValue(s Server, key string) string {
	switch key {
	case ServerSortKeyOwner:
		return strings.ToLower(s.Owner)
	case ServerSortKeyEnvironment:
		return strings.ToLower(s.Environment)
	default:
		return strings.ToLower(s.Name)
	}
}
