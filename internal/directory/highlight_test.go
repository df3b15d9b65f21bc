package directory

import (
	"testing"
	"time"
)

func TestHighlightExpires(t *testing.T) {
	sched := newManualScheduler()
	h := NewHighlightTracker(sched, 2*time.Second)

	h.MarkRecentlyAdded("alice@test.com")
	if !h.IsRecentlyAdded("alice@test.com") {
		t.Fatal("key should be flagged right after add")
	}

	sched.Advance(2100 * time.Millisecond)
	if h.IsRecentlyAdded("alice@test.com") {
		t.Error("flag should expire after the window")
	}
}

func TestHighlightReAddRestartsWindow(t *testing.T) {
	sched := newManualScheduler()
	h := NewHighlightTracker(sched, 2*time.Second)

	h.MarkRecentlyAdded("bob@test.com")
	sched.Advance(1500 * time.Millisecond)

	// Re-add replaces the timer rather than stacking a second one
	h.MarkRecentlyAdded("bob@test.com")
	sched.Advance(1000 * time.Millisecond)

	if !h.IsRecentlyAdded("bob@test.com") {
		t.Fatal("window should have restarted on re-add")
	}

	sched.Advance(1500 * time.Millisecond)
	if h.IsRecentlyAdded("bob@test.com") {
		t.Error("flag should expire after the restarted window")
	}
}

func TestHighlightIndependentKeys(t *testing.T) {
	sched := newManualScheduler()
	h := NewHighlightTracker(sched, 2*time.Second)

	h.MarkRecentlyAdded("a")
	sched.Advance(time.Second)
	h.MarkRecentlyAdded("b")
	sched.Advance(1500 * time.Millisecond)

	if h.IsRecentlyAdded("a") {
		t.Error("a should have expired")
	}
	if !h.IsRecentlyAdded("b") {
		t.Error("b should still be flagged")
	}
}

func TestHighlightClear(t *testing.T) {
	sched := newManualScheduler()
	h := NewHighlightTracker(sched, 2*time.Second)

	h.MarkRecentlyAdded("x")
	h.MarkRecentlyAdded("y")
	h.Clear()

	if h.IsRecentlyAdded("x") || h.IsRecentlyAdded("y") {
		t.Error("clear should drop all flags")
	}
	if sched.pendingCount() != 0 {
		t.Error("clear should cancel all timers")
	}
}

func TestHighlightDefaultWindow(t *testing.T) {
	h := NewHighlightTracker(newManualScheduler(), 0)
	if h.window != DefaultHighlightWindow {
		t.Errorf("expected default window %v, got %v", DefaultHighlightWindow, h.window)
	}
}
