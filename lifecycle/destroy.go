package lifecycle

import (
	"fmt"

	"cellhv/commreg"
	"cellhv/defs"
	"cellhv/memregion"
	"cellhv/ringlog"
)

// ringlogWarner adapts a Hypervisor's event ring to memregion.Logger so
// RemapToRoot's WarnOnError path (spec.md §7: "mapping errors are logged
// and not propagated ... because there is no safe alternative") has
// somewhere to put its diagnostics.
type ringlogWarner struct{ h *Hypervisor }

func (w ringlogWarner) Warnf(format string, args ...any) {
	w.h.Events.Append(ringlog.Event{Kind: "remap_warn", Detail: fmt.Sprintf(format, args...)})
}

// Destroy implements spec.md §4.F's destroy(id): tear the target cell down
// (park/return/re-home each of its cpus, unmap and best-effort remap each
// of its memory regions, architecturally destroy it), unlink it from the
// registry, free its heap block, and tell every remaining non-root cell
// the reconfiguration completed.
func (h *Hypervisor) Destroy(callerCPU, id int) defs.Err_t {
	h.mu.Lock()
	defer h.mu.Unlock()

	pr, err := h.prologue(callerCPU, id, true)
	if err != defs.ESUCCESS {
		return err
	}
	target := pr.target
	root := h.Registry.Root()

	targetCPUs := target.CPUSet.All()
	for _, c := range targetCPUs {
		if perr := h.Hooks.ParkCPU(c); perr != nil {
			h.resumePrologue(pr)
			return defs.OOM
		}
		root.CPUSet.SetCPU(c)
	}
	h.rehome(targetCPUs, root)

	for _, r := range target.Regions {
		if uerr := h.Hooks.UnmapRegion(target.ID, r); uerr != defs.ESUCCESS {
			h.Events.Append(ringlog.Event{Kind: "unmap_failed", CellID: target.ID, Detail: uerr.Error()})
		}
		if r.IsCommRegion() {
			continue
		}
		if _, rerr := memregion.RemapToRoot(h.Hooks, root.Regions, r, memregion.WarnOnError, ringlogWarner{h}); rerr != defs.ESUCCESS {
			h.Events.Append(ringlog.Event{Kind: "remap_failed", CellID: target.ID, Detail: rerr.Error()})
		}
	}

	if derr := h.Hooks.CellDestroy(target.ID); derr != nil {
		h.Events.Append(ringlog.Event{Kind: "arch_destroy_failed", CellID: target.ID, Detail: derr.Error()})
	}
	if cerr := h.Hooks.ConfigCommit(); cerr != nil {
		h.Events.Append(ringlog.Event{Kind: "config_commit_failed", CellID: target.ID, Detail: cerr.Error()})
	}

	target.CPUSet.Free()
	if rerr := h.Registry.Remove(target.ID); rerr != defs.ESUCCESS {
		panic("lifecycle: destroy target vanished from registry")
	}
	for _, pa := range target.DataBlock {
		h.Pool.Refdown(pa)
	}

	for _, other := range h.Registry.All() {
		if other.IsRoot() {
			continue
		}
		commreg.SendAndWait(other, defs.RECONFIG_COMPLETED, defs.INFORMATION, nil)
	}

	h.resumePrologue(pr)
	return defs.ESUCCESS
}
