package lifecycle

import (
	"cellhv/defs"
	"cellhv/memregion"
)

// SetLoadable implements spec.md §4.F's set_loadable(id). It is idempotent:
// calling it on an already-loadable cell resumes and returns success
// without side effect.
func (h *Hypervisor) SetLoadable(callerCPU, id int) defs.Err_t {
	h.mu.Lock()
	defer h.mu.Unlock()

	pr, err := h.prologue(callerCPU, id, false)
	if err != defs.ESUCCESS {
		return err
	}
	target := pr.target

	for _, c := range target.CPUSet.All() {
		pc := h.PerCPU[c]
		pc.Failed = false
		if perr := h.Hooks.ParkCPU(c); perr != nil {
			h.resumePrologue(pr)
			return defs.OOM
		}
	}

	if target.Loadable {
		h.resumePrologue(pr)
		return defs.ESUCCESS
	}

	target.Comm.SetState(defs.SHUT_DOWN)
	target.Loadable = true

	root := h.Registry.Root()
	for _, r := range target.Regions {
		if !r.IsLoadable() {
			continue
		}
		if _, rerr := memregion.RemapToRoot(h.Hooks, root.Regions, r, memregion.AbortOnError, nil); rerr != defs.ESUCCESS {
			h.resumePrologue(pr)
			return rerr
		}
	}

	if cerr := h.Hooks.ConfigCommit(); cerr != nil {
		h.resumePrologue(pr)
		return defs.OOM
	}

	h.resumePrologue(pr)
	return defs.ESUCCESS
}
