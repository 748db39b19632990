package hypercall

import (
	"cellhv/defs"
	"cellhv/lifecycle"
)

// hypervisorInfo answers HYPERVISOR_GET_INFO (spec.md §4.G, §6): read-only
// pool and registry counters.
func hypervisorInfo(hv *lifecycle.Hypervisor, kind defs.InfoKind_t) (uint32, defs.Err_t) {
	switch kind {
	case defs.MEM_POOL_SIZE:
		return uint32(hv.Pool.Size()), defs.ESUCCESS
	case defs.MEM_POOL_USED:
		return uint32(hv.Pool.Used()), defs.ESUCCESS
	case defs.REMAP_POOL_SIZE:
		return uint32(hv.RemapPool.Size()), defs.ESUCCESS
	case defs.REMAP_POOL_USED:
		return uint32(hv.RemapPool.Used()), defs.ESUCCESS
	case defs.NUM_CELLS:
		return uint32(hv.Registry.NumCells()), defs.ESUCCESS
	default:
		return 0, defs.INVALID
	}
}

// cpuInfo answers CPU_GET_INFO (spec.md §4.G, §6): per-cpu state or one of
// NUM_STATS statistics counters. The caller's cell must own cpu unless the
// caller itself is a root cpu.
func cpuInfo(hv *lifecycle.Hypervisor, callerCPU, cpu int, kind defs.InfoKind_t) (uint32, defs.Err_t) {
	caller, ok := hv.PerCPU[callerCPU]
	if !ok {
		return 0, defs.PERM
	}
	target, ok := hv.PerCPU[cpu]
	if !ok {
		return 0, defs.INVALID
	}
	if !caller.Cell.IsRoot() && target.Cell.ID != caller.Cell.ID {
		return 0, defs.PERM
	}

	if kind == defs.STATE {
		if target.Failed {
			return uint32(defs.FAILED), defs.ESUCCESS
		}
		return uint32(defs.RUNNING), defs.ESUCCESS
	}

	if i, ok := defs.StatIndex(kind); ok {
		return target.Stats.Get(i), defs.ESUCCESS
	}
	return 0, defs.INVALID
}
