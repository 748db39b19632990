// Package memregion implements the memory-region engine of spec.md §4.C:
// validation, unmap-from-root, and remap-to-root with overlap computation.
// Grounded on biscuit/src/vm/as.go's Vmregion_t, which holds a process's
// list of mapped regions and is consulted the same way root's configured
// region list is consulted here to recompute what remains mapped into root.
package memregion

import (
	"cellhv/defs"
	"cellhv/mempool"
	"cellhv/util"
)

// Region is a page-aligned physical-to-virtual mapping descriptor
// (spec.md §3: "{phys_start, virt_start, size, flags}").
type Region struct {
	PhysStart uint64
	VirtStart uint64
	Size      uint64
	Flags     uint32
}

// IsCommRegion reports whether r carries the COMM_REGION flag.
func (r Region) IsCommRegion() bool {
	return r.Flags&defs.COMM_REGION != 0
}

// IsLoadable reports whether r carries the LOADABLE flag.
func (r Region) IsLoadable() bool {
	return r.Flags&defs.LOADABLE != 0
}

func aligned(v uint64) bool {
	return util.Aligned(v, uint64(mempool.PGSIZE))
}

// CheckRegions validates that every region is page-aligned in all three
// numeric fields and carries only recognized flag bits (spec.md §4.C).
func CheckRegions(regions []Region) defs.Err_t {
	for _, r := range regions {
		if !aligned(r.PhysStart) || !aligned(r.VirtStart) || !aligned(r.Size) {
			return defs.INVALID
		}
		if r.Flags&^uint32(defs.VALID_FLAGS) != 0 {
			return defs.INVALID
		}
	}
	return defs.ESUCCESS
}
