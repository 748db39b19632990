package lifecycle

import (
	"time"

	"cellhv/cell"
	"cellhv/limits"
	"cellhv/ringlog"
)

// stallObserver returns a commreg.StallObserver that logs a ringlog stall
// event the first time a handshake with target crosses
// limits.StallWarnThreshold (SPEC_FULL.md's diagnostics supplement;
// spec.md §9 calls for "an implementation should document ... a
// diagnostic timeout even though the original design never returns
// control to the operator without a reply" — this observer documents, it
// never cancels).
func (h *Hypervisor) stallObserver(target *cell.Cell) func(time.Duration) {
	warned := false
	return func(elapsed time.Duration) {
		if warned || elapsed < limits.StallWarnThreshold {
			return
		}
		warned = true
		h.Events.Append(ringlog.Event{
			Kind:   "handshake_stall",
			CellID: target.ID,
			Detail: elapsed.String(),
		})
	}
}
