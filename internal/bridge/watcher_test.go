package bridge

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskroster/deskroster/internal/directory"
	"github.com/deskroster/deskroster/internal/rosterdb"
)

func TestSnapshotWatcherDetectsChange(t *testing.T) {
	db, err := rosterdb.Open(filepath.Join(t.TempDir(), "roster.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	w := NewSnapshotWatcher(db)
	defer w.Close()

	// No change yet: nothing pushed
	w.checkAndPush()
	select {
	case <-w.Snapshots():
		t.Fatal("push without a store change")
	default:
	}

	require.NoError(t, db.InsertContact(directory.Contact{Email: "a@test.com", Name: "A"}))
	w.checkAndPush()

	select {
	case snap := <-w.Snapshots():
		require.Len(t, snap.Contacts, 1)
		assert.Equal(t, "a@test.com", snap.Contacts[0].Key())
	default:
		t.Fatal("expected a snapshot push after the write")
	}
}

func TestSnapshotWatcherReplacesUndelivered(t *testing.T) {
	db, err := rosterdb.Open(filepath.Join(t.TempDir(), "roster.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	w := NewSnapshotWatcher(db)
	defer w.Close()

	require.NoError(t, db.InsertContact(directory.Contact{Email: "a@test.com", Name: "A"}))
	w.checkAndPush()

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, db.InsertContact(directory.Contact{Email: "b@test.com", Name: "B"}))
	w.checkAndPush()

	// Only the newest snapshot is waiting
	snap := <-w.Snapshots()
	assert.Len(t, snap.Contacts, 2)

	select {
	case <-w.Snapshots():
		t.Fatal("stale snapshot left in the channel")
	default:
	}
}
