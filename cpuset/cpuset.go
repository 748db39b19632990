// Package cpuset implements the fixed-capacity cpu bitmap of spec.md §4.A:
// membership, iteration, and exclusion over the physical cpu ids assigned
// to a cell. Small cpu-sets are stored inline; configurations whose bitmap
// would not fit in a page fail at construction. Adapted from the bitmask
// idiom in biscuit/src/mem/mem.go's Physpg_t.Cpumask (a uint64 bitmask
// keyed by logical cpu id) generalized to an arbitrary, page-bounded cap.
package cpuset

import (
	"cellhv/defs"
	"cellhv/mempool"
)

// inlineWords is the number of uint64 words stored directly in a Set
// before falling back to pool-backed storage. 4 words covers 256 cpus
// inline, comfortably more than any machine this control plane targets;
// larger configurations spill to an allocated page as spec.md §4.A
// requires ("Inline storage up to a small threshold; otherwise a single
// allocated page from the memory pool").
const inlineWords = 4

// Set is a bitmap over physical cpu ids in [0, capacity).
type Set struct {
	capacity int
	inline   [inlineWords]uint64
	overflow []uint64 // backed by a pool page when capacity exceeds inline
	pool     *mempool.Pool
	ovflPage mempool.Pa_t
	usesOvfl bool
}

func words(capacity int) int {
	return (capacity + 63) / 64
}

// New constructs a Set with room for `capacity` cpu ids. If the bitmap
// would not fit in a single mempool page, it fails with defs.TOO_BIG
// (spec.md §4.A: "Fails at init with TOO_LARGE if the configured size
// exceeds one page"). If capacity exceeds the inline threshold it draws one
// page from pool, failing with defs.OOM if none is available.
func New(capacity int, pool *mempool.Pool) (*Set, defs.Err_t) {
	if capacity < 0 {
		return nil, defs.INVALID
	}
	nwords := words(capacity)
	maxWordsPerPage := mempool.PGSIZE / 8
	if nwords > maxWordsPerPage {
		return nil, defs.TOO_BIG
	}
	s := &Set{capacity: capacity}
	if nwords <= inlineWords {
		return s, defs.ESUCCESS
	}
	if pool == nil {
		return nil, defs.OOM
	}
	pa, ok := pool.Alloc()
	if !ok {
		return nil, defs.OOM
	}
	s.pool = pool
	s.ovflPage = pa
	s.usesOvfl = true
	s.overflow = make([]uint64, nwords)
	return s, defs.ESUCCESS
}

// Free releases the overflow page, if any. Safe to call on an inline Set.
// CPU-set heap-backed storage is freed exactly when the owning cell is
// freed (spec.md §3).
func (s *Set) Free() {
	if s.usesOvfl && s.pool != nil {
		s.pool.Refdown(s.ovflPage)
		s.usesOvfl = false
	}
}

func (s *Set) words() []uint64 {
	if s.overflow != nil {
		return s.overflow
	}
	return s.inline[:]
}

// Capacity returns the configured cpu id upper bound (exclusive).
func (s *Set) Capacity() int {
	return s.capacity
}

func (s *Set) bitOf(c int) (int, uint64) {
	return c / 64, uint64(1) << uint(c%64)
}

// Contains reports whether cpu c is a member.
func (s *Set) Contains(c int) bool {
	if c < 0 || c >= s.capacity {
		return false
	}
	w, bit := s.bitOf(c)
	return s.words()[w]&bit != 0
}

// SetCPU adds cpu c to the set.
func (s *Set) SetCPU(c int) {
	if c < 0 || c >= s.capacity {
		panic("cpuset: id out of range")
	}
	w, bit := s.bitOf(c)
	s.words()[w] |= bit
}

// Clear removes cpu c from the set.
func (s *Set) Clear(c int) {
	if c < 0 || c >= s.capacity {
		panic("cpuset: id out of range")
	}
	w, bit := s.bitOf(c)
	s.words()[w] &^= bit
}

// Count returns the number of member cpus.
func (s *Set) Count() int {
	n := 0
	for c := 0; c < s.capacity; c++ {
		if s.Contains(c) {
			n++
		}
	}
	return n
}

// Next returns the smallest member cpu id strictly greater than `after`
// (pass -1 to start from the beginning), excluding `except`, or ok=false if
// none remains. Iteration is ascending by cpu id, as spec.md §4.A requires.
func (s *Set) Next(after, except int) (int, bool) {
	for c := after + 1; c < s.capacity; c++ {
		if c == except {
			continue
		}
		if s.Contains(c) {
			return c, true
		}
	}
	return 0, false
}

// All returns every member cpu id in ascending order.
func (s *Set) All() []int {
	return s.AllExcept(-1)
}

// AllExcept returns every member cpu id in ascending order except `except`.
func (s *Set) AllExcept(except int) []int {
	var out []int
	for c, ok := s.Next(-1, except); ok; c, ok = s.Next(c, except) {
		out = append(out, c)
	}
	return out
}

// SubsetOf reports whether every member of s is also a member of other.
func (s *Set) SubsetOf(other *Set) bool {
	for c, ok := s.Next(-1, -1); ok; c, ok = s.Next(c, -1) {
		if !other.Contains(c) {
			return false
		}
	}
	return true
}

// Disjoint reports whether s and other share no members.
func (s *Set) Disjoint(other *Set) bool {
	for c, ok := s.Next(-1, -1); ok; c, ok = s.Next(c, -1) {
		if other.Contains(c) {
			return false
		}
	}
	return true
}

// Union adds every member of other into s. Both sets must share capacity.
func (s *Set) Union(other *Set) {
	for c, ok := other.Next(-1, -1); ok; c, ok = other.Next(c, -1) {
		s.SetCPU(c)
	}
}

// FromSlice builds a Set containing exactly the given cpu ids.
func FromSlice(capacity int, ids []int, pool *mempool.Pool) (*Set, defs.Err_t) {
	s, err := New(capacity, pool)
	if err != defs.ESUCCESS {
		return nil, err
	}
	for _, id := range ids {
		if id < 0 || id >= capacity {
			s.Free()
			return nil, defs.INVALID
		}
		s.SetCPU(id)
	}
	return s, defs.ESUCCESS
}
