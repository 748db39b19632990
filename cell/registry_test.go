package cell

import (
	"testing"

	"cellhv/cellname"
	"cellhv/defs"
)

func TestRegistryInsertFindRemove(t *testing.T) {
	root := &Cell{ID: 0, Name: cellname.New("root")}
	r := NewRegistry(root)
	if r.NumCells() != 1 {
		t.Fatalf("NumCells() = %d, want 1", r.NumCells())
	}

	guest := &Cell{ID: r.GetFreeID(), Name: cellname.New("guest")}
	r.Insert(guest)
	if r.NumCells() != 2 {
		t.Fatalf("NumCells() = %d, want 2", r.NumCells())
	}

	got, ok := r.FindByID(guest.ID)
	if !ok || got != guest {
		t.Fatal("FindByID did not return the inserted cell")
	}
	if _, ok := r.FindByName(cellname.New("guest")); !ok {
		t.Fatal("FindByName did not find the inserted cell")
	}

	if err := r.Remove(guest.ID); err != defs.ESUCCESS {
		t.Fatalf("Remove: %v", err)
	}
	if r.NumCells() != 1 {
		t.Fatalf("NumCells() after remove = %d, want 1", r.NumCells())
	}
	if _, ok := r.FindByID(guest.ID); ok {
		t.Fatal("removed cell still findable")
	}
}

func TestRegistryRemoveRootRefused(t *testing.T) {
	root := &Cell{ID: 0, Name: cellname.New("root")}
	r := NewRegistry(root)
	if err := r.Remove(0); err != defs.INVALID {
		t.Fatalf("Remove(root) = %v, want INVALID", err)
	}
	if r.NumCells() != 1 {
		t.Fatal("root was removed")
	}
}

func TestRegistryGetFreeIDReusesGaps(t *testing.T) {
	root := &Cell{ID: 0}
	r := NewRegistry(root)
	a := &Cell{ID: r.GetFreeID()}
	r.Insert(a)
	b := &Cell{ID: r.GetFreeID()}
	r.Insert(b)
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("unexpected ids a=%d b=%d", a.ID, b.ID)
	}
	r.Remove(a.ID)
	if got := r.GetFreeID(); got != 1 {
		t.Fatalf("GetFreeID() after removing 1 = %d, want 1", got)
	}
}

func TestAnyOtherRunningLocked(t *testing.T) {
	root := &Cell{ID: 0}
	r := NewRegistry(root)
	locked := &Cell{ID: 1}
	locked.Comm.SetState(defs.RUNNING_LOCKED)
	r.Insert(locked)
	other := &Cell{ID: 2}
	r.Insert(other)

	if !r.AnyOtherRunningLocked(-1) {
		t.Fatal("expected a running-locked sibling")
	}
	if r.AnyOtherRunningLocked(1) {
		t.Fatal("excluding the locked cell itself should find none")
	}
	if r.AnyOtherRunningLocked(2) == false {
		t.Fatal("excluding an unrelated cell should still find the locked one")
	}
}
