package defs

// Hcall_t identifies a hypercall code in the ABI (spec.md §6).
type Hcall_t int

const (
	DISABLE            Hcall_t = iota /// global shutdown: disables hypercall interception for good
	CELL_CREATE                       /// cfg_gpa -> new cell id
	CELL_START                       /// id -> 0
	CELL_SET_LOADABLE                /// id -> 0
	CELL_DESTROY                     /// id -> 0
	HYPERVISOR_GET_INFO               /// kind -> counter
	CELL_GET_STATE                    /// id -> state
	CPU_GET_INFO                      /// cpu, kind -> counter
)

// InfoKind_t identifies a HYPERVISOR_GET_INFO or CPU_GET_INFO query.
type InfoKind_t int

const (
	// Hypervisor-wide info kinds.
	MEM_POOL_SIZE InfoKind_t = iota
	MEM_POOL_USED
	REMAP_POOL_SIZE
	REMAP_POOL_USED
	NUM_CELLS
)

const (
	// Per-CPU info kinds. STATE returns RUNNING or FAILED (the only two
	// values cpu_get_info(STATE) may yield per spec.md §6). STAT_BASE is
	// the first of NUM_STATS consecutive per-cpu statistics counters.
	STATE     InfoKind_t = 100
	STAT_BASE InfoKind_t = 1000
)

// NUM_STATS is the number of per-cpu saturating statistics counters
// (spec.md §3: "32 statistics counters").
const NUM_STATS = 32

// NUM_TEMPORARY_PAGES bounds the size of the hypervisor window used to map
// a guest-supplied configuration blob read-only during CELL_CREATE
// (spec.md §6). Matches the scale the teacher uses for bounded temporary
// mappings in vm.Vm_t (a handful of pages, not an unbounded window).
const NUM_TEMPORARY_PAGES = 16

// StatKind returns the InfoKind_t for the i'th statistics counter.
func StatKind(i int) InfoKind_t {
	return STAT_BASE + InfoKind_t(i)
}

// StatIndex reports whether kind names a statistics counter and, if so,
// which index.
func StatIndex(kind InfoKind_t) (int, bool) {
	if kind < STAT_BASE {
		return 0, false
	}
	i := int(kind - STAT_BASE)
	if i >= NUM_STATS {
		return 0, false
	}
	return i, true
}
