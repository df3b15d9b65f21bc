package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/deskroster/deskroster/internal/logging"
)

var storeLog = logging.ForComponent(logging.CompDirectory)

type mutationKind int

const (
	mutCreate mutationKind = iota
	mutUpdate
	mutDelete
)

// pendingMutation is a local edit applied ahead of remote confirmation.
type pendingMutation[T any] struct {
	kind mutationKind
	key  string
	rec  T // create: full record; update: the patch
}

// Store overlays in-flight local edits on top of an authoritative snapshot
// pushed from the external source. Creates show up immediately at the front
// of the effective collection, updates merge immediately, deletes disappear
// immediately; each is rolled back if the remote call fails. A new
// authoritative snapshot always wins and clears every pending overlay.
//
// The merge function combines a patch onto a base record field-by-field
// (zero patch fields leave the base value alone). The key function extracts
// a record's stable identity; records whose patch carries no key are
// skipped as a validation no-op.
type Store[T any] struct {
	remote Remote[T]
	keyOf  func(T) string
	merge  func(base, patch T) T

	mu            sync.Mutex
	authoritative []T
	pending       []*pendingMutation[T]
	deleteTarget  *T
	generation    uint64
}

// NewStore creates a store around the given remote surface.
func NewStore[T any](remote Remote[T], keyOf func(T) string, merge func(base, patch T) T) *Store[T] {
	return &Store[T]{
		remote: remote,
		keyOf:  keyOf,
		merge:  merge,
	}
}

// SetAuthoritative replaces the authoritative snapshot wholesale and
// discards all pending mutations unconditionally: the new snapshot already
// reflects confirmed edits, and unconfirmed ones that failed must not
// resurrect themselves. The slice is treated as immutable from here on.
func (s *Store[T]) SetAuthoritative(records []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authoritative = records
	s.pending = nil
	s.deleteTarget = nil
	s.generation++
}

// Effective returns the authoritative collection with all still-pending
// mutations applied: creates prepended, updates merged field-by-field,
// deletes removed. Keys are unique in the result; an authoritative entry
// wins over a pending create with the same key.
func (s *Store[T]) Effective() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveLocked()
}

func (s *Store[T]) effectiveLocked() []T {
	deleted := make(map[string]struct{})
	var updates []*pendingMutation[T]
	var creates []*pendingMutation[T]
	for _, m := range s.pending {
		switch m.kind {
		case mutCreate:
			creates = append(creates, m)
		case mutUpdate:
			updates = append(updates, m)
		case mutDelete:
			deleted[m.key] = struct{}{}
		}
	}

	authKeys := make(map[string]struct{}, len(s.authoritative))
	for _, r := range s.authoritative {
		authKeys[s.keyOf(r)] = struct{}{}
	}

	out := make([]T, 0, len(s.authoritative)+len(creates))

	// Pending creates go in front, newest first. A create whose key the
	// snapshot already contains is a stale duplicate: the authoritative
	// entry wins and the pending one is dropped from view.
	seen := make(map[string]struct{})
	for i := len(creates) - 1; i >= 0; i-- {
		m := creates[i]
		if _, dup := authKeys[m.key]; dup {
			continue
		}
		if _, dup := seen[m.key]; dup {
			continue
		}
		if _, gone := deleted[m.key]; gone {
			continue
		}
		seen[m.key] = struct{}{}
		out = append(out, s.applyUpdates(m.rec, m.key, updates))
	}

	for _, r := range s.authoritative {
		key := s.keyOf(r)
		if _, gone := deleted[key]; gone {
			continue
		}
		out = append(out, s.applyUpdates(r, key, updates))
	}
	return out
}

func (s *Store[T]) applyUpdates(base T, key string, updates []*pendingMutation[T]) T {
	for _, m := range updates {
		if m.key == key {
			base = s.merge(base, m.rec)
		}
	}
	return base
}

// Create inserts rec at the front of the effective collection immediately,
// then invokes the remote create. On explicit rejection or transport error
// the optimistic insert is removed and the failure surfaces to the caller.
// On success the entry stays until the next authoritative push supersedes it.
func (s *Store[T]) Create(ctx context.Context, rec T) error {
	key := s.keyOf(rec)
	m := &pendingMutation[T]{kind: mutCreate, key: key, rec: rec}

	s.mu.Lock()
	s.pending = append(s.pending, m)
	gen := s.generation
	s.mu.Unlock()

	res, err := s.remote.Create(ctx, rec)
	if err != nil {
		s.removePending(m, gen)
		return fmt.Errorf("create %q: %w", key, err)
	}
	if !res.OK {
		s.removePending(m, gen)
		return &RejectedError{Op: "create", Key: key, Message: res.Message}
	}
	return nil
}

// Update merges patch onto the matching effective entry immediately, then
// invokes the remote update. A patch without a key is a validation no-op:
// there is nothing to merge against, so it is silently skipped. On failure
// the merge is rolled back, restoring the prior field values.
func (s *Store[T]) Update(ctx context.Context, patch T) error {
	key := s.keyOf(patch)
	if key == "" {
		storeLog.Debug("update_skipped_no_key")
		return nil
	}
	m := &pendingMutation[T]{kind: mutUpdate, key: key, rec: patch}

	s.mu.Lock()
	s.pending = append(s.pending, m)
	gen := s.generation
	s.mu.Unlock()

	res, err := s.remote.Update(ctx, patch)
	if err != nil {
		s.removePending(m, gen)
		return fmt.Errorf("update %q: %w", key, err)
	}
	if !res.OK {
		s.removePending(m, gen)
		return &RejectedError{Op: "update", Key: key, Message: res.Message}
	}
	return nil
}

// SelectForDelete stages a single record awaiting delete confirmation.
// Deletion is never a batch: one record is selected, confirmed, deleted.
func (s *Store[T]) SelectForDelete(rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteTarget = &rec
}

// ClearDeleteSelection drops the staged record without deleting it.
func (s *Store[T]) ClearDeleteSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteTarget = nil
}

// DeleteSelection returns the staged record, if any.
func (s *Store[T]) DeleteSelection() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.deleteTarget == nil {
		return zero, false
	}
	return *s.deleteTarget, true
}

// DeleteSelected removes the staged record from the effective collection
// immediately and invokes the remote delete. No-op when nothing is staged.
// On failure (explicit or transport) the record reappears at its original
// position.
func (s *Store[T]) DeleteSelected(ctx context.Context) error {
	s.mu.Lock()
	if s.deleteTarget == nil {
		s.mu.Unlock()
		storeLog.Debug("delete_skipped_no_selection")
		return nil
	}
	key := s.keyOf(*s.deleteTarget)
	s.deleteTarget = nil
	m := &pendingMutation[T]{kind: mutDelete, key: key}
	s.pending = append(s.pending, m)
	gen := s.generation
	s.mu.Unlock()

	res, err := s.remote.Delete(ctx, key)
	if err != nil {
		s.removePending(m, gen)
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if !res.OK {
		s.removePending(m, gen)
		return &RejectedError{Op: "delete", Key: key, Message: res.Message}
	}
	return nil
}

// removePending rolls back one overlay. A completion that arrives after a
// newer authoritative push is stale: the push already cleared every
// overlay, so the rollback must not touch the new state.
func (s *Store[T]) removePending(m *pendingMutation[T], gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		storeLog.Debug("rollback_stale_generation", slog.String("key", m.key))
		return
	}
	for i, p := range s.pending {
		if p == m {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// PendingCount reports how many overlays are unresolved. Mostly for tests
// and status display.
func (s *Store[T]) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
