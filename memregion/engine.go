package memregion

import "cellhv/defs"

// Mapper is the architecture collaborator's memory-mapping surface
// (spec.md §6: arch_map_memory_region, arch_unmap_memory_region). The CORE
// never manipulates page tables itself; it only decides which descriptors
// to (un)map and delegates to Mapper.
type Mapper interface {
	MapRegion(cellID int, r Region) defs.Err_t
	UnmapRegion(cellID int, r Region) defs.Err_t
}

// RootID is the fixed cell id of the root cell (spec.md §3).
const RootID = 0

// FailMode selects how RemapToRoot handles a per-region mapping failure.
type FailMode int

const (
	// AbortOnError returns the first error encountered.
	AbortOnError FailMode = iota
	// WarnOnError logs and continues, used during destroy where best-effort
	// reassembly of root's map is required (spec.md §4.C, §7).
	WarnOnError
)

// Logger receives a diagnostic message when WarnOnError swallows an error.
// Kept minimal and decoupled from any logging library, consistent with the
// teacher never importing one (SPEC_FULL.md's AMBIENT STACK note on
// logging).
type Logger interface {
	Warnf(format string, args ...any)
}

type discardLogger struct{}

func (discardLogger) Warnf(string, ...any) {}

// UnmapFromRoot unmaps region from the root cell using a synthesized
// descriptor whose VirtStart equals PhysStart, since root has a guaranteed
// identity mapping (spec.md §4.C). It must not be called with a
// COMM_REGION region.
func UnmapFromRoot(m Mapper, region Region) defs.Err_t {
	if region.IsCommRegion() {
		panic("memregion: UnmapFromRoot called with COMM_REGION")
	}
	identity := region
	identity.VirtStart = region.PhysStart
	return m.UnmapRegion(RootID, identity)
}

// RemapToRoot maps every overlap between region and the supplied root
// configuration regions back into root (spec.md §4.C). In AbortOnError
// mode it returns on the first mapping failure; in WarnOnError mode it logs
// and continues, returning the count of regions that failed to map (an
// explicit choice resolving the Open Question in spec.md §9 about
// remap_to_root's ambiguous "return only the last error" behavior: a count
// is more useful to a caller than an arbitrary single error code).
func RemapToRoot(m Mapper, rootRegions []Region, region Region, mode FailMode, log Logger) (int, defs.Err_t) {
	if log == nil {
		log = discardLogger{}
	}
	failures := 0
	for _, root := range rootRegions {
		overlap, ok := Overlap(root, region)
		if !ok {
			continue
		}
		if err := m.MapRegion(RootID, overlap); err != defs.ESUCCESS {
			if mode == AbortOnError {
				return failures, err
			}
			failures++
			log.Warnf("memregion: failed to remap overlap phys=%#x size=%#x into root: %v",
				overlap.PhysStart, overlap.Size, err)
		}
	}
	return failures, defs.ESUCCESS
}
