package lifecycle

import (
	"cellhv/cell"
	"cellhv/commreg"
	"cellhv/defs"
	"cellhv/quiesce"
)

// prologueResult is what the shared prologue of spec.md §4.F hands back:
// the located target cell and the suspend tokens that must be resumed, in
// reverse order, on every exit path.
type prologueResult struct {
	target    *cell.Cell
	rootTok   *quiesce.Token
	targetTok *quiesce.Token
}

// resumePrologue inverts whatever suspension prologue established, target
// first then root, tolerating a partially built result (nil tokens are
// skipped) so a failed prologue can unwind through the same path as a
// successful one.
func (h *Hypervisor) resumePrologue(pr *prologueResult) {
	if pr == nil {
		return
	}
	if pr.targetTok != nil {
		if err := h.Quiescer.Resume(pr.targetTok); err != nil {
			panic(err)
		}
	}
	if pr.rootTok != nil {
		if err := h.Quiescer.Resume(pr.rootTok); err != nil {
			panic(err)
		}
	}
}

// prologue implements the shared preamble spec.md §4.F describes for
// start/set_loadable/destroy: caller must be a root cpu (PERM); suspend
// root; locate target by id (NOENT); reject a root target (INVALID); for
// destroy, reject if any other non-root cell is RUNNING_LOCKED (PERM);
// request shutdown approval from the target (PERM if denied); suspend the
// target. Every exit, success or failure, resumes in reverse order — the
// caller must invoke resumePrologue exactly once on every return path,
// including its own later failures, by holding onto the returned
// *prologueResult.
func (h *Hypervisor) prologue(callerCPU, targetID int, forDestroy bool) (*prologueResult, defs.Err_t) {
	caller := h.callerCell(callerCPU)
	if caller == nil || !caller.IsRoot() {
		return nil, defs.PERM
	}

	root := h.Registry.Root()
	rootTok, err := h.Quiescer.Suspend(root.CPUSet, callerCPU)
	if err != nil {
		return nil, defs.OOM
	}
	pr := &prologueResult{rootTok: rootTok}

	target, ok := h.Registry.FindByID(targetID)
	if !ok {
		h.resumePrologue(pr)
		return nil, defs.NOENT
	}
	if target.IsRoot() {
		h.resumePrologue(pr)
		return nil, defs.INVALID
	}
	pr.target = target

	if forDestroy && h.Registry.AnyOtherRunningLocked(target.ID) {
		h.resumePrologue(pr)
		return nil, defs.PERM
	}

	if !commreg.SendAndWait(target, defs.SHUTDOWN_REQUEST, defs.REQUEST, h.stallObserver(target)) {
		h.resumePrologue(pr)
		return nil, defs.PERM
	}

	targetTok, err := h.Quiescer.Suspend(target.CPUSet, callerCPU)
	if err != nil {
		h.resumePrologue(pr)
		return nil, defs.OOM
	}
	pr.targetTok = targetTok

	return pr, defs.ESUCCESS
}

// rehome moves every cpu in ids from the cell pointed to by per-cpu
// records into dst, clearing each cpu's stats and failed flag (used by
// both create and destroy, spec.md §4.F: "re-home its per-cpu record to
// the new cell").
func (h *Hypervisor) rehome(ids []int, dst *cell.Cell) {
	for _, id := range ids {
		pc := h.PerCPU[id]
		pc.Cell = dst
		pc.Failed = false
		pc.Stats.ResetAll()
	}
}
