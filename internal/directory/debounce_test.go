package directory

import (
	"testing"
	"time"
)

func TestDebouncerEmitsOnlyFinalValue(t *testing.T) {
	sched := newManualScheduler()

	var emitted []string
	d := NewDebouncer(sched, 300*time.Millisecond, func(v string) {
		emitted = append(emitted, v)
	})

	// Rapid typing inside the quiet window
	d.Set("b")
	sched.Advance(100 * time.Millisecond)
	d.Set("bo")
	sched.Advance(100 * time.Millisecond)
	d.Set("bob")

	if len(emitted) != 0 {
		t.Fatalf("emitted before quiet window elapsed: %v", emitted)
	}

	sched.Advance(350 * time.Millisecond)

	if len(emitted) != 1 {
		t.Fatalf("expected exactly one emission, got %v", emitted)
	}
	if emitted[0] != "bob" {
		t.Errorf("expected final value %q, got %q", "bob", emitted[0])
	}
}

func TestDebouncerSeparateQuietWindows(t *testing.T) {
	sched := newManualScheduler()

	var emitted []string
	d := NewDebouncer(sched, 300*time.Millisecond, func(v string) {
		emitted = append(emitted, v)
	})

	d.Set("alice")
	sched.Advance(350 * time.Millisecond)
	d.Set("charlie")
	sched.Advance(350 * time.Millisecond)

	if len(emitted) != 2 {
		t.Fatalf("expected two emissions, got %v", emitted)
	}
	if emitted[0] != "alice" || emitted[1] != "charlie" {
		t.Errorf("unexpected emissions: %v", emitted)
	}
}

func TestDebouncerCancel(t *testing.T) {
	sched := newManualScheduler()

	var emitted []string
	d := NewDebouncer(sched, 300*time.Millisecond, func(v string) {
		emitted = append(emitted, v)
	})

	d.Set("doomed")
	d.Cancel()
	sched.Advance(time.Second)

	if len(emitted) != 0 {
		t.Errorf("cancelled debounce still emitted: %v", emitted)
	}
}

func TestDebouncerFlush(t *testing.T) {
	sched := newManualScheduler()

	var emitted []string
	d := NewDebouncer(sched, 300*time.Millisecond, func(v string) {
		emitted = append(emitted, v)
	})

	d.Set("now")
	d.Flush()

	if len(emitted) != 1 || emitted[0] != "now" {
		t.Fatalf("expected immediate emission of %q, got %v", "now", emitted)
	}

	// The timer was cancelled; advancing must not double-emit
	sched.Advance(time.Second)
	if len(emitted) != 1 {
		t.Errorf("flush left a live timer behind: %v", emitted)
	}
}

func TestDebouncerDefaultInterval(t *testing.T) {
	d := NewDebouncer(newManualScheduler(), 0, func(string) {})
	if d.delay != DefaultDebounceInterval {
		t.Errorf("expected default interval %v, got %v", DefaultDebounceInterval, d.delay)
	}
}
