package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote scripts the external mutation surface. Hooks run while the
// call is in flight, which lets tests observe or mutate the store between
// the optimistic apply and the remote outcome.
type fakeRemote struct {
	mu           sync.Mutex
	rejectWith   string // non-empty: every call returns Result{OK:false}
	transportErr error

	createCalls int
	updateCalls int
	deleteCalls int

	onCreate func()
	onUpdate func()
	onDelete func()
}

func (f *fakeRemote) outcome() (Result, error) {
	if f.transportErr != nil {
		return Result{}, f.transportErr
	}
	if f.rejectWith != "" {
		return Result{OK: false, Message: f.rejectWith}, nil
	}
	return Result{OK: true}, nil
}

func (f *fakeRemote) Create(_ context.Context, _ Contact) (Result, error) {
	f.mu.Lock()
	f.createCalls++
	hook := f.onCreate
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return f.outcome()
}

func (f *fakeRemote) Update(_ context.Context, _ Contact) (Result, error) {
	f.mu.Lock()
	f.updateCalls++
	hook := f.onUpdate
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return f.outcome()
}

func (f *fakeRemote) Delete(_ context.Context, _ string) (Result, error) {
	f.mu.Lock()
	f.deleteCalls++
	hook := f.onDelete
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return f.outcome()
}

func newContactStore(remote *fakeRemote) *Store[Contact] {
	return NewStore(remote, Contact.Key, MergeContact)
}

func TestCreateSuccessPrepends(t *testing.T) {
	remote := &fakeRemote{}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	err := store.Create(context.Background(), IngestContact(Contact{Email: "dave@test.com", Name: "Dave"}))
	require.NoError(t, err)

	eff := store.Effective()
	require.Len(t, eff, 4)
	assert.Equal(t, "dave@test.com", eff[0].Key(), "create must appear before all original records")

	count := 0
	for _, c := range eff {
		if c.Key() == "dave@test.com" {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one record with the new key")
}

func TestCreateExplicitFailureRollsBack(t *testing.T) {
	remote := &fakeRemote{rejectWith: "email already exists"}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	before := store.Effective()
	err := store.Create(context.Background(), IngestContact(Contact{Email: "dave@test.com", Name: "Dave"}))

	require.Error(t, err)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "create", rejected.Op)
	assert.Equal(t, "dave@test.com", rejected.Key)

	assert.Equal(t, before, store.Effective(), "rollback must restore the exact prior state")
}

func TestCreateTransportFailureRollsBack(t *testing.T) {
	remote := &fakeRemote{transportErr: errors.New("bridge unavailable")}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	before := store.Effective()
	err := store.Create(context.Background(), IngestContact(Contact{Email: "dave@test.com", Name: "Dave"}))

	require.Error(t, err)
	var rejected *RejectedError
	assert.False(t, errors.As(err, &rejected), "transport failure is not an explicit rejection")

	assert.Equal(t, before, store.Effective())
	for _, c := range store.Effective() {
		assert.NotEqual(t, "dave@test.com", c.Key())
	}
}

func TestUpdateMergesOnlyPatchedFields(t *testing.T) {
	remote := &fakeRemote{}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	err := store.Update(context.Background(), Contact{Email: "bob@test.com", Phone: "555-0101"})
	require.NoError(t, err)

	eff := store.Effective()
	require.Len(t, eff, 3)
	for _, c := range eff {
		if c.Key() == "bob@test.com" {
			assert.Equal(t, "555-0101", c.Phone, "patched field changes")
			assert.Equal(t, "Bob Berg", c.Name, "unpatched field untouched")
			assert.Equal(t, "Operator", c.Title, "unpatched field untouched")
		} else {
			// Other records completely untouched
			assert.Empty(t, c.Phone)
		}
	}
}

func TestUpdateWithoutKeyIsNoop(t *testing.T) {
	remote := &fakeRemote{}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	before := store.Effective()
	err := store.Update(context.Background(), Contact{Phone: "555-0101"})

	require.NoError(t, err)
	assert.Equal(t, 0, remote.updateCalls, "no remote call without a key to merge against")
	assert.Equal(t, before, store.Effective())
}

func TestUpdateFailureRestoresPriorValues(t *testing.T) {
	remote := &fakeRemote{rejectWith: "stale record"}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	before := store.Effective()
	err := store.Update(context.Background(), Contact{Email: "bob@test.com", Title: "Director"})

	require.Error(t, err)
	assert.Equal(t, before, store.Effective(), "every field of every record restored")
}

func TestDeleteWithoutSelectionIsNoop(t *testing.T) {
	remote := &fakeRemote{}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	err := store.DeleteSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, remote.deleteCalls)
	assert.Len(t, store.Effective(), 3)
}

func TestDeleteSuccessRemoves(t *testing.T) {
	remote := &fakeRemote{}
	store := newContactStore(remote)
	contacts := testContacts()
	store.SetAuthoritative(contacts)

	store.SelectForDelete(contacts[1])
	err := store.DeleteSelected(context.Background())
	require.NoError(t, err)

	eff := store.Effective()
	require.Len(t, eff, 2)
	for _, c := range eff {
		assert.NotEqual(t, "bob@test.com", c.Key())
	}

	_, staged := store.DeleteSelection()
	assert.False(t, staged, "selection is consumed by the delete")
}

func TestDeleteFailureReinsertsAtOriginalPosition(t *testing.T) {
	remote := &fakeRemote{transportErr: errors.New("socket closed")}
	store := newContactStore(remote)
	contacts := testContacts()
	store.SetAuthoritative(contacts)

	store.SelectForDelete(contacts[1])
	err := store.DeleteSelected(context.Background())
	require.Error(t, err)

	eff := store.Effective()
	require.Len(t, eff, 3)
	assert.Equal(t, "bob@test.com", eff[1].Key(), "record reappears at its original position")
}

func TestAuthoritativePushClearsPending(t *testing.T) {
	remote := &fakeRemote{}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	require.NoError(t, store.Create(context.Background(), IngestContact(Contact{Email: "dave@test.com", Name: "Dave"})))
	require.Equal(t, 1, store.PendingCount())

	// New push wins over every unresolved overlay, no matter what
	fresh := []Contact{IngestContact(Contact{Email: "erin@test.com", Name: "Erin"})}
	store.SetAuthoritative(fresh)

	assert.Equal(t, fresh, store.Effective())
	assert.Equal(t, 0, store.PendingCount())
}

func TestEffectiveDeduplicatesStalePendingCreate(t *testing.T) {
	remote := &fakeRemote{}
	store := newContactStore(remote)

	// The snapshot already contains the key being created: the
	// authoritative entry wins and the pending duplicate is dropped.
	auth := testContacts()
	store.SetAuthoritative(auth)

	var midFlight []Contact
	remote.onCreate = func() {
		midFlight = store.Effective()
	}

	err := store.Create(context.Background(), IngestContact(Contact{Email: "alice@test.com", Name: "Imposter"}))
	require.NoError(t, err)

	require.Len(t, midFlight, 3, "no duplicate key while the create is in flight")
	assert.Equal(t, "Alice Anders", midFlight[0].Name, "authoritative record wins")
}

func TestStaleCompletionDoesNotResurrect(t *testing.T) {
	remote := &fakeRemote{rejectWith: "too late"}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	fresh := []Contact{IngestContact(Contact{Email: "erin@test.com", Name: "Erin"})}
	remote.onCreate = func() {
		// Authoritative push lands while the create is still in flight
		store.SetAuthoritative(fresh)
	}

	err := store.Create(context.Background(), IngestContact(Contact{Email: "dave@test.com", Name: "Dave"}))
	require.Error(t, err)

	// The failed create's rollback must not disturb the newer snapshot
	assert.Equal(t, fresh, store.Effective())
}

func TestFailingCreateScenario(t *testing.T) {
	remote := &fakeRemote{transportErr: errors.New("ipc failure")}
	store := newContactStore(remote)
	store.SetAuthoritative(testContacts())

	err := store.Create(context.Background(), IngestContact(Contact{Email: "dave@test.com", Name: "Dave"}))
	require.Error(t, err, "the call site receives the failure")

	for _, c := range store.Effective() {
		assert.NotEqual(t, "dave@test.com", c.Key(), "effective collection excludes the failed create")
	}
}

func TestUpdateAppliesToPendingCreate(t *testing.T) {
	remote := &fakeRemote{}
	store := newContactStore(remote)
	store.SetAuthoritative(nil)

	var midFlight []Contact
	remote.onUpdate = func() {
		midFlight = store.Effective()
	}

	require.NoError(t, store.Create(context.Background(), IngestContact(Contact{Email: "dave@test.com", Name: "Dave"})))
	require.NoError(t, store.Update(context.Background(), Contact{Email: "dave@test.com", Title: "SRE"}))

	require.Len(t, midFlight, 1)
	assert.Equal(t, "SRE", midFlight[0].Title, "update overlays merge onto pending creates too")
}
