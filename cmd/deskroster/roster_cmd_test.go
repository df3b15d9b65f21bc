package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskroster/deskroster/internal/directory"
)

// useTempRoster points the data directory at a fresh temp dir so commands
// operate on an isolated store.
func useTempRoster(t *testing.T) {
	t.Helper()
	t.Setenv("DESKROSTER_DIR", t.TempDir())
}

func TestMustOpenDBCreatesStore(t *testing.T) {
	useTempRoster(t)

	db := mustOpenDB()
	defer db.Close()

	contacts, err := db.LoadContacts()
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

func TestAddThenLoadRoundTrip(t *testing.T) {
	useTempRoster(t)

	db := mustOpenDB()
	defer db.Close()

	require.NoError(t, db.InsertContact(directory.IngestContact(directory.Contact{
		Email: "alice@test.com",
		Name:  "Alice",
	})))

	contacts, err := db.LoadContacts()
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "alice@test.com", contacts[0].Email)
	// LoadContacts re-ingests, so the search string is ready for querying.
	assert.NotEmpty(t, directory.Search(contacts, "alice"))
}
