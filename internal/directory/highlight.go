package directory

import (
	"sync"
	"time"
)

// DefaultHighlightWindow is how long a freshly added record stays flagged.
const DefaultHighlightWindow = 2000 * time.Millisecond

// HighlightTracker records keys that should be visually flagged for a fixed
// window after a successful add. One timer per key; re-adding a key restarts
// its window instead of stacking a second timer.
type HighlightTracker struct {
	sched  Scheduler
	window time.Duration

	mu   sync.Mutex
	keys map[string]struct{}
}

// NewHighlightTracker creates a tracker with the given window.
// A non-positive window falls back to DefaultHighlightWindow.
func NewHighlightTracker(sched Scheduler, window time.Duration) *HighlightTracker {
	if window <= 0 {
		window = DefaultHighlightWindow
	}
	return &HighlightTracker{
		sched:  sched,
		window: window,
		keys:   make(map[string]struct{}),
	}
}

// MarkRecentlyAdded flags key and schedules its expiry. Scheduling under the
// per-key timer name replaces any previous timer for the same key.
func (h *HighlightTracker) MarkRecentlyAdded(key string) {
	h.mu.Lock()
	h.keys[key] = struct{}{}
	h.mu.Unlock()

	h.sched.Schedule("highlight:"+key, h.window, func() {
		h.mu.Lock()
		delete(h.keys, key)
		h.mu.Unlock()
	})
}

// IsRecentlyAdded reports whether key is currently flagged.
func (h *HighlightTracker) IsRecentlyAdded(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.keys[key]
	return ok
}

// Clear drops all flags and their timers.
func (h *HighlightTracker) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.keys {
		h.sched.Cancel("highlight:" + key)
		delete(h.keys, key)
	}
}
