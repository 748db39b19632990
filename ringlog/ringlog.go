// Package ringlog is the hypervisor's append-only diagnostic record,
// adapted from biscuit/src/circbuf's single-page circular buffer. Where
// circbuf holds raw bytes for a device driver, ringlog holds structured
// Event values, since the CORE has no console/printk (out of scope per
// spec.md §1) to format text for — entries are consumed programmatically
// by HYPERVISOR_GET_INFO-adjacent diagnostics and by tests, not printed.
package ringlog

import "sync"

// Event is one diagnostic record: a lifecycle milestone (a closure during
// shutdown, a denied handshake) or a stall warning (SPEC_FULL.md's
// diagnostics supplement).
type Event struct {
	Kind   string
	CellID int
	Detail string
}

// Ring is a fixed-capacity circular buffer of Events, mirroring
// circbuf.Circbuf_t's head/tail bookkeeping over a bounded backing store
// instead of an unbounded log.
type Ring struct {
	mu   sync.Mutex
	buf  []Event
	head int
	size int
}

// New creates a ring that retains the most recent cap events.
func New(cap int) *Ring {
	if cap <= 0 {
		cap = 1
	}
	return &Ring{buf: make([]Event, cap)}
}

// Append records an event, overwriting the oldest entry once the ring is
// full.
func (r *Ring) Append(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.head] = e
	r.head = (r.head + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// Snapshot returns the ring's contents, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, r.size)
	start := (r.head - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}
