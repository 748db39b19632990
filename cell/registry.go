package cell

import (
	"cellhv/cellname"
	"cellhv/defs"
)

// Registry is the cell collection of spec.md §4.B. It is an arena indexed
// by id rather than the source's intrusive singly-linked list — an
// admissible substitution per spec.md §9's Design Notes, since the
// requirement is stable identity, O(1) cpu→cell lookup (provided by
// PerCPU.Cell, not by the registry itself), and O(N) enumeration.
//
// Callers must already hold the quiescence established by quiesce.Suspend
// over the root cell before mutating a Registry (spec.md §4.B: "No
// concurrent mutation").
type Registry struct {
	cells []*Cell // insertion order; cells[0] is always root
}

// NewRegistry creates a registry whose sole member is root.
func NewRegistry(root *Cell) *Registry {
	if root.ID != 0 {
		panic("cell: root must have id 0")
	}
	return &Registry{cells: []*Cell{root}}
}

// NumCells returns the registry's length, which must always equal the
// number of list entries (spec.md §3 invariant 6; here trivially true by
// construction since Registry has no separate counter to drift).
func (r *Registry) NumCells() int {
	return len(r.cells)
}

// Root returns the root cell, always present at index 0.
func (r *Registry) Root() *Cell {
	return r.cells[0]
}

// All returns the registry's cells in insertion order (root first).
func (r *Registry) All() []*Cell {
	return r.cells
}

// FindByID performs the linear scan spec.md §4.B specifies.
func (r *Registry) FindByID(id int) (*Cell, bool) {
	for _, c := range r.cells {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

// FindByName performs the linear scan spec.md §4.B specifies.
func (r *Registry) FindByName(name cellname.Name) (*Cell, bool) {
	for _, c := range r.cells {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// GetFreeID returns the smallest non-negative integer not currently used
// as a cell id (spec.md §4.B, §8 invariant 4). The scan is O(N) per
// candidate as in the source ("retry goto"); spec.md §9 notes this is
// O(N²) worst case and accepts it for the small expected N this control
// plane targets.
func (r *Registry) GetFreeID() int {
	for candidate := 0; ; candidate++ {
		used := false
		for _, c := range r.cells {
			if c.ID == candidate {
				used = true
				break
			}
		}
		if !used {
			return candidate
		}
	}
}

// Insert appends a cell at the tail of the registry (spec.md §4.B:
// "Insertion appends at tail").
func (r *Registry) Insert(c *Cell) {
	r.cells = append(r.cells, c)
}

// Remove unlinks the cell with the given id. It refuses to remove root
// (spec.md §3: "Root always present at list head and never destroyed").
func (r *Registry) Remove(id int) defs.Err_t {
	if id == 0 {
		return defs.INVALID
	}
	for i, c := range r.cells {
		if c.ID == id {
			r.cells = append(r.cells[:i], r.cells[i+1:]...)
			return defs.ESUCCESS
		}
	}
	return defs.NOENT
}

// AnyOtherRunningLocked reports whether any non-root cell other than
// `exclude` (pass -1 for none) is in RUNNING_LOCKED state — the check
// spec.md §4.F requires before create and before reconfiguring any other
// cell ("reject if ... a running-locked sibling forbids reconfiguration").
func (r *Registry) AnyOtherRunningLocked(exclude int) bool {
	for _, c := range r.cells {
		if c.IsRoot() || c.ID == exclude {
			continue
		}
		if c.Comm.State() == defs.RUNNING_LOCKED {
			return true
		}
	}
	return false
}
