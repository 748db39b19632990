package lifecycle

import "cellhv/defs"

// GetState implements spec.md §4.F's get_state(id): root-cell only, no
// quiesce needed, since concurrent create/destroy are already serialized
// by root suspension (a reconfiguration cannot be in flight while this
// hypercall executes on a root cpu, because that root cpu would itself be
// suspended).
func (h *Hypervisor) GetState(callerCPU, id int) (defs.CellState_t, defs.Err_t) {
	h.mu.Lock()
	defer h.mu.Unlock()

	caller := h.callerCell(callerCPU)
	if caller == nil || !caller.IsRoot() {
		return 0, defs.PERM
	}

	target, ok := h.Registry.FindByID(id)
	if !ok {
		return 0, defs.NOENT
	}

	state := target.Comm.State()
	if !state.Valid() {
		return 0, defs.INVALID
	}
	return state, defs.ESUCCESS
}
