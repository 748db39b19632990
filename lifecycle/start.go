package lifecycle

import (
	"cellhv/defs"
	"cellhv/memregion"
)

// Start implements spec.md §4.F's start(id): if the target is loadable,
// unmap its LOADABLE regions from root and commit (making the loaded
// image private to the cell), then clear loadable; transition the cell to
// RUNNING and reset every cell cpu.
func (h *Hypervisor) Start(callerCPU, id int) defs.Err_t {
	h.mu.Lock()
	defer h.mu.Unlock()

	pr, err := h.prologue(callerCPU, id, false)
	if err != defs.ESUCCESS {
		return err
	}
	target := pr.target

	if target.Loadable {
		for _, r := range target.Regions {
			if !r.IsLoadable() {
				continue
			}
			if merr := memregion.UnmapFromRoot(h.Hooks, r); merr != defs.ESUCCESS {
				h.resumePrologue(pr)
				return merr
			}
		}
		if cerr := h.Hooks.ConfigCommit(); cerr != nil {
			h.resumePrologue(pr)
			return defs.OOM
		}
		target.Loadable = false
	}

	target.Comm.SetState(defs.RUNNING)
	target.Comm.SetMsg(defs.MSG_NONE)

	for _, c := range target.CPUSet.All() {
		pc := h.PerCPU[c]
		pc.Failed = false
		if rerr := h.Hooks.ResetCPU(c); rerr != nil {
			h.resumePrologue(pr)
			return defs.OOM
		}
	}

	h.resumePrologue(pr)
	return defs.ESUCCESS
}
