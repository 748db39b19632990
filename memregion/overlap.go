package memregion

// Overlap computes the intersection of root region r with input region m in
// physical address space, per spec.md §4.C's three cases. It is kept as a
// pure function — spec.md §9 flags this as "the single subtle piece of
// arithmetic in the core" and asks that it be isolated for exhaustive
// testing.
//
//   - m.PhysStart ∈ r: overlap.phys = m.PhysStart;
//     overlap.size = min(r.size - (m.PhysStart - r.PhysStart), m.size).
//   - r.PhysStart ∈ m: overlap.phys = r.PhysStart;
//     overlap.size = min(m.size - (r.PhysStart - m.PhysStart), r.size).
//   - otherwise: no overlap.
//
// overlap.virt = r.VirtStart + (overlap.phys - r.PhysStart); overlap.flags
// are inherited from r.
func Overlap(r, m Region) (Region, bool) {
	rEnd := r.PhysStart + r.Size
	mEnd := m.PhysStart + m.Size

	within := func(x, start, end uint64) bool {
		return x >= start && x < end
	}

	var physStart, size uint64
	switch {
	case r.Size != 0 && within(m.PhysStart, r.PhysStart, rEnd):
		physStart = m.PhysStart
		size = min64(r.Size-(m.PhysStart-r.PhysStart), m.Size)
	case m.Size != 0 && within(r.PhysStart, m.PhysStart, mEnd):
		physStart = r.PhysStart
		size = min64(m.Size-(r.PhysStart-m.PhysStart), r.Size)
	default:
		return Region{}, false
	}
	if size == 0 {
		return Region{}, false
	}
	out := Region{
		PhysStart: physStart,
		VirtStart: r.VirtStart + (physStart - r.PhysStart),
		Size:      size,
		Flags:     r.Flags,
	}
	return out, true
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
