// Package lifecycle implements the lifecycle manager of spec.md §4.F:
// create/start/set_loadable/destroy/get_state and their rollback, wiring
// together the registry (cell), the memory-region engine (memregion), the
// quiesce/resume protocol (quiesce), the comm-region messenger (commreg),
// and the architecture collaborator (arch).
package lifecycle

import (
	"sync"

	"cellhv/arch"
	"cellhv/cell"
	"cellhv/cellname"
	"cellhv/cpuset"
	"cellhv/defs"
	"cellhv/diag"
	"cellhv/memregion"
	"cellhv/mempool"
	"cellhv/quiesce"
	"cellhv/ringlog"
)

// Hypervisor is the single process-wide control-plane object. spec.md §9's
// Design Notes call the root cell, the system configuration, and the
// shutdown lock "three process-wide objects" whose correctness depends on
// uniqueness, not scoping; this repo encapsulates all three (plus the
// registry, pools, and collaborators) in one value threaded through every
// operation, exactly as that note suggests is acceptable.
type Hypervisor struct {
	// mu serializes all reconfiguration end to end and every get_state
	// read (cpu_get_info in package hypercall reads PerCPU without
	// taking it). It stands in for "the caller holds root
	// suspended" (spec.md §5): in this simulation guest cpus do not
	// autonomously issue hypercalls — a caller invokes a Go method
	// directly — so nothing else stops two goroutines from calling
	// lifecycle methods concurrently except this mutex. quiesce.Suspend
	// still runs against the simulated vcpus beneath it, so the cpu
	// freeze semantics spec.md §4.D describes are exercised for real.
	mu sync.Mutex

	Registry  *cell.Registry
	PerCPU    map[int]*cell.PerCPU
	Pool      *mempool.Pool // backs cpu-set overflow pages and cell header blocks
	RemapPool *mempool.Pool // reported by REMAP_POOL_SIZE/USED; not allocated from
	Hooks     arch.Hooks
	Quiescer  *quiesce.Quiescer
	Events    *ringlog.Ring

	// shutdownMu is the literal shutdown_lock of spec.md §4.G — the one
	// spin-lock the concurrency model names explicitly.
	shutdownMu sync.Mutex

	// faultSeen dedupes repeated panic_stop ringlog entries by call site.
	faultSeen *diag.DistinctCaller
}

// RootID is re-exported from memregion for callers that only import
// lifecycle.
const RootID = memregion.RootID

// New constructs a Hypervisor whose root cell owns every cpu id in
// [0, ncpus) and the given root memory configuration.
func New(ncpus int, rootRegions []memregion.Region, hooks arch.Hooks, pool, remapPool *mempool.Pool) *Hypervisor {
	root := &cell.Cell{ID: RootID, Name: cellname.New("root")}
	ids := make([]int, ncpus)
	for i := range ids {
		ids[i] = i
	}
	set, err := cpuset.FromSlice(ncpus, ids, pool)
	if err != defs.ESUCCESS {
		panic("lifecycle: failed to build root cpu-set")
	}
	root.CPUSet = set
	root.Regions = append([]memregion.Region(nil), rootRegions...)
	root.Comm.SetState(defs.RUNNING)

	h := &Hypervisor{
		Registry:  cell.NewRegistry(root),
		PerCPU:    make(map[int]*cell.PerCPU, ncpus),
		Pool:      pool,
		RemapPool: remapPool,
		Hooks:     hooks,
		Quiescer:  quiesce.New(hooks),
		Events:    ringlog.New(64),
		faultSeen: diag.NewDistinctCaller(),
	}
	for i := 0; i < ncpus; i++ {
		h.PerCPU[i] = &cell.PerCPU{CPUID: i, Cell: root}
	}
	return h
}

// callerCell returns the cell owning callerCPU, or nil if callerCPU is
// unknown.
func (h *Hypervisor) callerCell(callerCPU int) *cell.Cell {
	pc, ok := h.PerCPU[callerCPU]
	if !ok {
		return nil
	}
	return pc.Cell
}
