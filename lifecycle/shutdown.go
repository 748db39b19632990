package lifecycle

import (
	"cellhv/cell"
	"cellhv/commreg"
	"cellhv/defs"
	"cellhv/ringlog"
)

// Shutdown implements spec.md §4.G's global shutdown hypercall. Exactly
// one caller cpu performs the collective decision under shutdownMu; every
// other concurrent caller observes the decision already written into its
// own per-cpu shutdown_state.
func (h *Hypervisor) Shutdown(callerCPU int) defs.Err_t {
	caller := h.callerCell(callerCPU)
	if caller == nil || !caller.IsRoot() {
		return defs.PERM
	}

	pc := h.PerCPU[callerCPU]

	h.shutdownMu.Lock()
	if pc.ShutdownState == cell.ShutdownNone {
		decision := defs.ESUCCESS
		for _, c := range h.Registry.All() {
			if c.IsRoot() {
				continue
			}
			if !commreg.SendAndWait(c, defs.SHUTDOWN_REQUEST, defs.REQUEST, nil) {
				decision = defs.PERM
				break
			}
		}

		if decision == defs.ESUCCESS {
			for _, c := range h.Registry.All() {
				if c.IsRoot() {
					continue
				}
				if _, err := h.Quiescer.Suspend(c.CPUSet, callerCPU); err != nil {
					decision = defs.OOM
					break
				}
				h.Events.Append(ringlog.Event{Kind: "cell_shutdown", CellID: c.ID})
				for _, cpu := range c.CPUSet.All() {
					h.Hooks.ShutdownCPU(cpu)
				}
			}
			if decision == defs.ESUCCESS {
				h.Hooks.Shutdown()
			}
		}

		for _, root := range h.Registry.Root().CPUSet.All() {
			h.setShutdownState(root, decision)
		}
	}
	h.shutdownMu.Unlock()

	state, errCode := pc.ShutdownState, pc.ShutdownErrCode
	pc.ShutdownState = cell.ShutdownNone
	if state == cell.ShutdownStarted {
		return defs.ESUCCESS
	}
	return errCode
}

func (h *Hypervisor) setShutdownState(cpu int, decision defs.Err_t) {
	pc := h.PerCPU[cpu]
	if decision == defs.ESUCCESS {
		pc.ShutdownState = cell.ShutdownStarted
	} else {
		pc.ShutdownState = cell.ShutdownErr
		pc.ShutdownErrCode = decision
	}
}
