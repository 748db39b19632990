// Package commreg implements the comm-region messenger of spec.md §4.E: a
// bounded-memory request/information handshake with a guest cell, spun on
// rather than blocked on, since the only synchronization primitive spec.md
// §5 allows here is the comm region itself. Adapted in spirit from
// biscuit/src/vm/as.go's Lock_pmap/Unlock_pmap pattern of an explicit,
// narrow critical section, but the wait here is over shared memory instead
// of a mutex.
package commreg

import (
	"runtime"
	"time"

	"cellhv/cell"
	"cellhv/defs"
)

// StallObserver is invoked periodically while SendAndWait spins, with the
// elapsed wait duration. It exists purely for diagnostics (SPEC_FULL.md's
// diagnostics supplement): the handshake itself is never cancelled by it,
// since spec.md §5 explicitly makes cancellation a non-goal.
type StallObserver func(elapsed time.Duration)

// pollInterval is how often SendAndWait checks in with the StallObserver;
// it does not throttle the spin itself (runtime.Gosched is the relax hint
// between iterations, per spec.md §4.E).
const pollInterval = 10 * time.Millisecond

// SendAndWait implements spec.md §4.E. It returns true iff the cell
// approves the message (vacuously, if the cell carries PASSIVE_COMMREG or
// has already reached SHUT_DOWN/FAILED; otherwise by an explicit reply).
func SendAndWait(c *cell.Cell, msg defs.MsgCode_t, mtype defs.MsgType_t, observe StallObserver) bool {
	if c.Passive() {
		return true
	}
	c.Comm.SetMsg(msg)

	start := time.Now()
	lastPoll := start
	for {
		state := c.Comm.State()
		if state == defs.SHUT_DOWN || state == defs.FAILED {
			return true
		}
		reply := c.Comm.Reply()
		if reply != defs.REPLY_NONE {
			switch mtype {
			case defs.REQUEST:
				return reply == defs.REQUEST_APPROVED
			case defs.INFORMATION:
				return reply == defs.RECEIVED
			}
		}
		runtime.Gosched()
		if observe != nil {
			if now := time.Now(); now.Sub(lastPoll) >= pollInterval {
				lastPoll = now
				observe(now.Sub(start))
			}
		}
	}
}
