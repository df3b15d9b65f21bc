package logging

import (
	"os"
	"sync"
)

// RingBuffer is a thread-safe circular byte buffer used to keep the most
// recent log output in memory for crash dumps. It implements io.Writer and
// silently overwrites the oldest data when full.
type RingBuffer struct {
	mu      sync.Mutex
	buf     []byte
	cap     int
	w       int // next write offset
	wrapped bool
}

// NewRingBuffer creates a ring buffer with the given capacity in bytes.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 4 * 1024 * 1024
	}
	return &RingBuffer{
		buf: make([]byte, capacity),
		cap: capacity,
	}
}

// Write implements io.Writer. Data wraps around when the buffer is full.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	if n >= rb.cap {
		// Larger than the whole buffer: keep only the tail.
		copy(rb.buf, p[n-rb.cap:])
		rb.w = 0
		rb.wrapped = true
		return n, nil
	}

	space := rb.cap - rb.w
	if n <= space {
		copy(rb.buf[rb.w:], p)
		rb.w += n
		if rb.w == rb.cap {
			rb.w = 0
			rb.wrapped = true
		}
	} else {
		copy(rb.buf[rb.w:], p[:space])
		copy(rb.buf, p[space:])
		rb.w = n - space
		rb.wrapped = true
	}

	return n, nil
}

// Bytes returns the buffer contents in chronological order.
func (rb *RingBuffer) Bytes() []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if !rb.wrapped {
		out := make([]byte, rb.w)
		copy(out, rb.buf[:rb.w])
		return out
	}

	out := make([]byte, rb.cap)
	copy(out, rb.buf[rb.w:])
	copy(out[rb.cap-rb.w:], rb.buf[:rb.w])
	return out
}

// DumpToFile writes the ring buffer contents to a file in chronological order.
func (rb *RingBuffer) DumpToFile(path string) error {
	return os.WriteFile(path, rb.Bytes(), 0o644)
}
