package lifecycle

import (
	"cellhv/cell"
	"cellhv/commreg"
	"cellhv/cpuset"
	"cellhv/defs"
	"cellhv/limits"
	"cellhv/mempool"
	"cellhv/memregion"
)

// Create implements spec.md §4.F's create(config_addr). Unlike
// start/set_loadable/destroy it has no target yet, so it does not go
// through the shared prologue: it suspends root itself and builds the
// target cell from a configuration blob read out of guest memory.
func (h *Hypervisor) Create(callerCPU int, cfgGPA uint64) (int, defs.Err_t) {
	h.mu.Lock()
	defer h.mu.Unlock()

	caller := h.callerCell(callerCPU)
	if caller == nil || !caller.IsRoot() {
		return -1, defs.PERM
	}

	root := h.Registry.Root()
	rootTok, qerr := h.Quiescer.Suspend(root.CPUSet, callerCPU)
	if qerr != nil {
		return -1, defs.OOM
	}
	resumeRoot := func() {
		if err := h.Quiescer.Resume(rootTok); err != nil {
			panic(err)
		}
	}

	if h.Registry.AnyOtherRunningLocked(-1) {
		resumeRoot()
		return -1, defs.PERM
	}

	npages := defs.NUM_TEMPORARY_PAGES
	if err := limits.CheckConfigPages(npages); err != defs.ESUCCESS {
		resumeRoot()
		return -1, err
	}
	data, release, ok := h.Hooks.MapTemporary(cfgGPA, npages)
	if !ok {
		resumeRoot()
		return -1, defs.TOO_BIG
	}
	cfg, err := DecodeConfig(data)
	release()
	if err != defs.ESUCCESS {
		resumeRoot()
		return -1, err
	}

	if _, exists := h.Registry.FindByName(cfg.Name); exists {
		resumeRoot()
		return -1, defs.EXIST
	}

	if err := memregion.CheckRegions(cfg.Regions); err != defs.ESUCCESS {
		resumeRoot()
		return -1, err
	}

	cpuSetBytes := (root.CPUSet.Capacity() + 7) / 8
	dataPages := ConfigPages(cpuSetBytes, len(cfg.Regions), mempool.PGSIZE)
	allocated := make([]mempool.Pa_t, 0, dataPages)
	for i := 0; i < dataPages; i++ {
		pa, ok := h.Pool.Alloc()
		if !ok {
			h.rollbackCreate(-1, nil, allocated, root, nil)
			resumeRoot()
			return -1, defs.OOM
		}
		allocated = append(allocated, pa)
	}

	for _, c := range cfg.CPUIDs {
		if c == callerCPU {
			h.rollbackCreate(-1, nil, allocated, root, nil)
			resumeRoot()
			return -1, defs.BUSY
		}
	}

	set, err := cpuset.FromSlice(root.CPUSet.Capacity(), cfg.CPUIDs, h.Pool)
	if err != defs.ESUCCESS {
		h.rollbackCreate(-1, nil, allocated, root, nil)
		resumeRoot()
		return -1, err
	}
	if !set.SubsetOf(root.CPUSet) {
		h.rollbackCreate(-1, set, allocated, root, nil)
		resumeRoot()
		return -1, defs.BUSY
	}

	id := h.Registry.GetFreeID()
	newCell := &cell.Cell{
		ID:        id,
		Name:      cfg.Name,
		CPUSet:    set,
		Regions:   append([]memregion.Region(nil), cfg.Regions...),
		Flags:     cfg.Flags,
		DataPages: dataPages,
		DataBlock: allocated,
	}

	if err := h.Hooks.CellCreate(id); err != nil {
		h.rollbackCreate(id, set, allocated, root, nil)
		resumeRoot()
		return -1, defs.OOM
	}

	cleared := make([]int, 0, len(cfg.CPUIDs))
	for _, c := range cfg.CPUIDs {
		if err := h.Hooks.ParkCPU(c); err != nil {
			h.rollbackCreate(id, set, allocated, root, cleared)
			resumeRoot()
			return -1, defs.OOM
		}
		root.CPUSet.Clear(c)
		cleared = append(cleared, c)
	}
	h.rehome(cfg.CPUIDs, newCell)

	for _, r := range cfg.Regions {
		if r.IsCommRegion() {
			continue
		}
		if err := memregion.UnmapFromRoot(h.Hooks, r); err != defs.ESUCCESS {
			h.rollbackCreate(id, set, allocated, root, cleared)
			resumeRoot()
			return -1, err
		}
		if merr := h.Hooks.MapRegion(id, r); merr != defs.ESUCCESS {
			h.rollbackCreate(id, set, allocated, root, cleared)
			resumeRoot()
			return -1, merr
		}
	}

	if err := h.Hooks.ConfigCommit(); err != nil {
		h.rollbackCreate(id, set, allocated, root, cleared)
		resumeRoot()
		return -1, defs.OOM
	}

	newCell.Comm.SetState(defs.SHUT_DOWN)
	h.Registry.Insert(newCell)

	for _, other := range h.Registry.All() {
		if other.IsRoot() || other.ID == id {
			continue
		}
		commreg.SendAndWait(other, defs.RECONFIG_COMPLETED, defs.INFORMATION, nil)
	}

	resumeRoot()
	return id, defs.ESUCCESS
}

// rollbackCreate unwinds a failed create in the order spec.md §4.F names:
// "destroy partial cell → free cpu-set → free heap block → resume root"
// (resume root is performed by the caller after this returns). id < 0
// means CellCreate was never called. parkedCPUs lists every cpu already
// removed from root's cpu-set (via Hooks.ParkCPU) by the time the failure
// happened; each must be reset and handed back to root so no cpu is left
// belonging to neither root nor the partially built cell.
func (h *Hypervisor) rollbackCreate(id int, set *cpuset.Set, allocated []mempool.Pa_t, root *cell.Cell, parkedCPUs []int) {
	for _, c := range parkedCPUs {
		h.Hooks.ResetCPU(c)
		root.CPUSet.SetCPU(c)
		pc := h.PerCPU[c]
		pc.Cell = root
		pc.Failed = false
		pc.Stats.ResetAll()
	}
	if id >= 0 {
		h.Hooks.CellDestroy(id)
	}
	if set != nil {
		set.Free()
	}
	for _, pa := range allocated {
		h.Pool.Refdown(pa)
	}
}
