package arch

import (
	"fmt"
	"sync"

	"cellhv/defs"
	"cellhv/memregion"
	"cellhv/mempool"
)

// SimArch is the reference Hooks implementation: a software simulation
// standing in for real VMCS/VMCB setup and page-table manipulation, both
// explicitly out of scope for the CORE (spec.md §1). It tracks enough
// state (which regions are currently mapped into which cell) to make the
// CORE's invariants testable end to end without real hardware.
type SimArch struct {
	mu      sync.Mutex
	vcpus   map[int]*vcpu
	mapped  map[int][]memregion.Region // cellID -> regions currently mapped
	guest   []byte                     // fake guest-physical memory backing MapTemporary
	window  []byte                     // scratch temporary-window buffer
	stopped map[int]bool
}

// NewSimArch constructs a simulation with ncpus vcpus and a guest-physical
// memory image (used only to source bytes for MapTemporary; production
// architecture code would instead walk real guest page tables).
func NewSimArch(ncpus int, guestImage []byte) *SimArch {
	s := &SimArch{
		vcpus:   make(map[int]*vcpu, ncpus),
		mapped:  make(map[int][]memregion.Region),
		guest:   guestImage,
		window:  make([]byte, defs.NUM_TEMPORARY_PAGES*mempool.PGSIZE),
		stopped: make(map[int]bool),
	}
	for i := 0; i < ncpus; i++ {
		s.vcpus[i] = newVCPU(i)
	}
	return s
}

func (s *SimArch) cpu(id int) (*vcpu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vcpus[id]
	if !ok {
		return nil, fmt.Errorf("arch: unknown cpu %d", id)
	}
	return v, nil
}

func (s *SimArch) SuspendCPU(cpuID int) error {
	v, err := s.cpu(cpuID)
	if err != nil {
		return err
	}
	v.suspend()
	return nil
}

func (s *SimArch) ResumeCPU(cpuID int) error {
	v, err := s.cpu(cpuID)
	if err != nil {
		return err
	}
	v.resume()
	return nil
}

func (s *SimArch) ParkCPU(cpuID int) error {
	v, err := s.cpu(cpuID)
	if err != nil {
		return err
	}
	v.stop()
	s.mu.Lock()
	s.stopped[cpuID] = true
	s.mu.Unlock()
	return nil
}

func (s *SimArch) ResetCPU(cpuID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped[cpuID] {
		s.stopped[cpuID] = false
		s.vcpus[cpuID] = newVCPU(cpuID)
	}
	return nil
}

func (s *SimArch) ShutdownCPU(cpuID int) error {
	return s.ParkCPU(cpuID)
}

func (s *SimArch) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, v := range s.vcpus {
		v.stop()
		s.stopped[id] = true
	}
	return nil
}

func (s *SimArch) PanicStop(cpuID int) error {
	return s.ParkCPU(cpuID)
}

func (s *SimArch) PanicHalt(cpuID int) error {
	return nil
}

func (s *SimArch) CellCreate(cellID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mapped[cellID]; ok {
		return fmt.Errorf("arch: cell %d already created", cellID)
	}
	s.mapped[cellID] = nil
	return nil
}

func (s *SimArch) CellDestroy(cellID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mapped, cellID)
	return nil
}

func (s *SimArch) ConfigCommit() error {
	return nil
}

// MapRegion and UnmapRegion implement memregion.Mapper by tracking, per
// cell, the set of regions currently mapped. This is bookkeeping only: no
// real page table is touched, consistent with spec.md §1 keeping guest
// page-table management out of scope.
func (s *SimArch) MapRegion(cellID int, r memregion.Region) defs.Err_t {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapped[cellID] = append(s.mapped[cellID], r)
	return defs.ESUCCESS
}

func (s *SimArch) UnmapRegion(cellID int, r memregion.Region) defs.Err_t {
	s.mu.Lock()
	defer s.mu.Unlock()
	regions := s.mapped[cellID]
	for i, m := range regions {
		if m.PhysStart == r.PhysStart && m.Size == r.Size {
			s.mapped[cellID] = append(regions[:i], regions[i+1:]...)
			return defs.ESUCCESS
		}
	}
	return defs.ESUCCESS
}

// Mapped returns a snapshot of the regions currently mapped into cellID,
// for tests asserting invariant 7 (memory map coverage).
func (s *SimArch) Mapped(cellID int) []memregion.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]memregion.Region, len(s.mapped[cellID]))
	copy(out, s.mapped[cellID])
	return out
}

func (s *SimArch) MapTemporary(gpa uint64, npages int) ([]byte, func(), bool) {
	if npages > defs.NUM_TEMPORARY_PAGES || npages < 0 {
		return nil, nil, false
	}
	n := npages * mempool.PGSIZE
	if int(gpa)+n > len(s.guest) {
		return nil, nil, false
	}
	copy(s.window[:n], s.guest[gpa:int(gpa)+n])
	view := s.window[:n]
	release := func() {}
	return view, release, true
}
