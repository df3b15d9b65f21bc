package directory

import (
	"sync"
	"time"
)

// DefaultDebounceInterval is how long search input must stay quiet before
// the debounced value propagates.
const DefaultDebounceInterval = 300 * time.Millisecond

const debounceKey = "search-debounce"

// Debouncer decouples rapidly changing input (search keystrokes) from the
// filter recomputation behind it. Each Set restarts the quiet window; only
// the final value within a window is emitted. Intermediate values are
// discarded, never queued.
type Debouncer struct {
	sched Scheduler
	delay time.Duration
	emit  func(string)

	mu      sync.Mutex
	pending string
}

// NewDebouncer creates a debouncer that calls emit with the settled value.
// A non-positive delay falls back to DefaultDebounceInterval.
func NewDebouncer(sched Scheduler, delay time.Duration, emit func(string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceInterval
	}
	return &Debouncer{
		sched: sched,
		delay: delay,
		emit:  emit,
	}
}

// Set feeds a new raw input value, restarting the quiet window.
func (d *Debouncer) Set(value string) {
	d.mu.Lock()
	d.pending = value
	d.mu.Unlock()

	d.sched.Schedule(debounceKey, d.delay, func() {
		d.mu.Lock()
		v := d.pending
		d.mu.Unlock()
		d.emit(v)
	})
}

// Cancel drops any pending emission without firing it.
func (d *Debouncer) Cancel() {
	d.sched.Cancel(debounceKey)
}

// Flush emits the pending value immediately, cancelling the timer.
func (d *Debouncer) Flush() {
	d.sched.Cancel(debounceKey)
	d.mu.Lock()
	v := d.pending
	d.mu.Unlock()
	d.emit(v)
}
