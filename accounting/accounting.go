// Package accounting tracks cumulative time the hypervisor spends with a
// cell quiesced, adapted from biscuit/src/accnt's Accnt_t (there tracking
// user/system nanoseconds per process; here tracking suspended-window
// nanoseconds per cell, since spec.md §9 calls out that quiesce windows
// are the one place a reconfiguration can stall on a slow guest and an
// operator needs a way to see that after the fact).
package accounting

import (
	"sync"
	"time"
)

// Accnt tallies nanoseconds spent with a cell suspended, guarded by a
// mutex exactly as the teacher's Accnt_t guards its own two counters.
type Accnt struct {
	mu        sync.Mutex
	suspendNS int64
	windows   int64
}

// Begin returns the start time of a new suspend window; pair with End.
func (a *Accnt) Begin() time.Time {
	return time.Now()
}

// End records that a suspend window begun at start has closed.
func (a *Accnt) End(start time.Time) {
	d := time.Since(start)
	a.mu.Lock()
	a.suspendNS += int64(d)
	a.windows++
	a.mu.Unlock()
}

// Snapshot returns the cumulative suspended time and number of windows.
func (a *Accnt) Snapshot() (suspended time.Duration, windows int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return time.Duration(a.suspendNS), a.windows
}
