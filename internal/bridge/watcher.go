package bridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/deskroster/deskroster/internal/rosterdb"
)

// Snapshot re-exports the store snapshot type so watcher consumers don't
// need a rosterdb import.
type Snapshot = rosterdb.Snapshot

// pollInterval is how often the watcher checks for store changes.
// fsnotify on the SQLite file is unreliable on some filesystems (9p, NFS,
// WSL), so change detection polls the metadata timestamp instead.
const pollInterval = 2 * time.Second

// SnapshotSource is what a watcher needs from the store.
type SnapshotSource interface {
	LastModified() (int64, error)
	Snapshot() (*Snapshot, error)
}

// SnapshotWatcher polls the roster store for changes and delivers fresh
// authoritative snapshots. Every write to the store, whoever made it, ends
// up as one push on Snapshots(); the client layer replaces its
// authoritative collection wholesale on each one.
type SnapshotWatcher struct {
	db        SnapshotSource
	snapshots chan *Snapshot
	closeCh   chan struct{}
	closeOnce sync.Once

	mu           sync.Mutex
	lastModified int64
	interval     time.Duration
}

// NewSnapshotWatcher creates a watcher over the given store.
func NewSnapshotWatcher(db SnapshotSource) *SnapshotWatcher {
	lastMod, _ := db.LastModified()
	return &SnapshotWatcher{
		db:           db,
		lastModified: lastMod,
		interval:     pollInterval,
		snapshots:    make(chan *Snapshot, 1),
		closeCh:      make(chan struct{}),
	}
}

// Snapshots delivers fresh authoritative snapshots. The channel holds one
// pending snapshot; a newer one replaces it rather than queueing.
func (w *SnapshotWatcher) Snapshots() <-chan *Snapshot {
	return w.snapshots
}

// Start begins polling (non-blocking).
func (w *SnapshotWatcher) Start() {
	go w.pollLoop()
}

// Close stops the watcher.
func (w *SnapshotWatcher) Close() {
	w.closeOnce.Do(func() { close(w.closeCh) })
}

func (w *SnapshotWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.closeCh:
			return
		case <-ticker.C:
			w.checkAndPush()
		}
	}
}

func (w *SnapshotWatcher) checkAndPush() {
	ts, err := w.db.LastModified()
	if err != nil {
		bridgeLog.Debug("watcher_poll_failed", slog.String("error", err.Error()))
		return
	}

	w.mu.Lock()
	changed := ts > w.lastModified
	if changed {
		w.lastModified = ts
	}
	w.mu.Unlock()

	if !changed {
		return
	}

	snap, err := w.db.Snapshot()
	if err != nil {
		bridgeLog.Warn("watcher_snapshot_failed", slog.String("error", err.Error()))
		return
	}
	bridgeLog.Debug("watcher_store_changed", slog.Int64("timestamp", ts))

	// Replace any undelivered snapshot with the newer one
	select {
	case w.snapshots <- snap:
	default:
		select {
		case <-w.snapshots:
		default:
		}
		select {
		case w.snapshots <- snap:
		default:
		}
	}
}
