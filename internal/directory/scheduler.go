package directory

import (
	"sync"
	"time"
)

// Scheduler schedules named callbacks after a delay. Scheduling an already
// scheduled key replaces its timer, it never stacks. The debounce controller
// and the highlight tracker use this instead of ambient timer functions so
// tests can substitute a fake clock.
type Scheduler interface {
	// Schedule runs fn after delay under the given key, replacing any
	// callback previously scheduled for that key.
	Schedule(key string, delay time.Duration, fn func())

	// Cancel drops the pending callback for key, if any.
	Cancel(key string)
}

// TimerScheduler is the production Scheduler backed by time.AfterFunc.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewTimerScheduler creates an empty timer scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{timers: make(map[string]*time.Timer)}
}

// Schedule implements Scheduler.
func (s *TimerScheduler) Schedule(key string, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
}

// Cancel implements Scheduler.
func (s *TimerScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// CancelAll stops every pending timer. Called on shutdown/unmount so no
// callback fires against torn-down state.
func (s *TimerScheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
