// Package limits tracks hypervisor-wide resource ceilings, adapted from
// biscuit/src/limits's Syslimit_t (there tracking process/vnode/futex
// ceilings) and its Lhits limit-hit counter. This control plane's ceilings
// are the ones spec.md actually names: the temporary mapping window
// (NUM_TEMPORARY_PAGES) and the comm-region stall warning threshold used
// by the lifecycle manager's diagnostics supplement.
package limits

import (
	"sync/atomic"
	"time"

	"cellhv/defs"
)

// Hits counts how many times a caller was rejected for exceeding a limit,
// mirroring limits.Lhits.
var Hits int64

func recordHit() {
	atomic.AddInt64(&Hits, 1)
}

// CheckConfigPages reports defs.TOO_BIG if npages would exceed the
// temporary mapping window (spec.md §4.F: "bounded by
// NUM_TEMPORARY_PAGES").
func CheckConfigPages(npages int) defs.Err_t {
	if npages > defs.NUM_TEMPORARY_PAGES || npages < 0 {
		recordHit()
		return defs.TOO_BIG
	}
	return defs.ESUCCESS
}

// StallWarnThreshold is the elapsed comm-region wait time after which the
// lifecycle manager logs a ringlog stall warning (SPEC_FULL.md's
// diagnostics supplement; the handshake itself is never cancelled).
const StallWarnThreshold = 2 * time.Second
