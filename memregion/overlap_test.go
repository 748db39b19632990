package memregion

import "testing"

func TestOverlapNone(t *testing.T) {
	r := Region{PhysStart: 0x0, Size: 0x1000}
	m := Region{PhysStart: 0x2000, Size: 0x1000}
	if _, ok := Overlap(r, m); ok {
		t.Fatal("expected no overlap")
	}
}

func TestOverlapMSubsetOfR(t *testing.T) {
	r := Region{PhysStart: 0x0, VirtStart: 0x0, Size: 0x3000, Flags: 1}
	m := Region{PhysStart: 0x1000, Size: 0x1000}
	got, ok := Overlap(r, m)
	if !ok {
		t.Fatal("expected overlap")
	}
	want := Region{PhysStart: 0x1000, VirtStart: 0x1000, Size: 0x1000, Flags: 1}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestOverlapRSubsetOfM(t *testing.T) {
	r := Region{PhysStart: 0x1000, VirtStart: 0x1000, Size: 0x1000, Flags: 2}
	m := Region{PhysStart: 0x0, Size: 0x3000}
	got, ok := Overlap(r, m)
	if !ok {
		t.Fatal("expected overlap")
	}
	want := Region{PhysStart: 0x1000, VirtStart: 0x1000, Size: 0x1000, Flags: 2}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestOverlapPartialLow(t *testing.T) {
	// m starts inside r and extends past it.
	r := Region{PhysStart: 0x0, VirtStart: 0x5000, Size: 0x2000}
	m := Region{PhysStart: 0x1000, Size: 0x2000}
	got, ok := Overlap(r, m)
	if !ok {
		t.Fatal("expected overlap")
	}
	want := Region{PhysStart: 0x1000, VirtStart: 0x6000, Size: 0x1000}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestOverlapPartialHigh(t *testing.T) {
	// r starts inside m and extends past it.
	r := Region{PhysStart: 0x1000, VirtStart: 0x9000, Size: 0x3000}
	m := Region{PhysStart: 0x0, Size: 0x2000}
	got, ok := Overlap(r, m)
	if !ok {
		t.Fatal("expected overlap")
	}
	want := Region{PhysStart: 0x1000, VirtStart: 0x9000, Size: 0x1000}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}

func TestOverlapIdentical(t *testing.T) {
	r := Region{PhysStart: 0x4000, VirtStart: 0x4000, Size: 0x1000, Flags: 1}
	m := Region{PhysStart: 0x4000, Size: 0x1000}
	got, ok := Overlap(r, m)
	if !ok {
		t.Fatal("expected overlap")
	}
	if got != r {
		t.Fatalf("got %+v want %+v", got, r)
	}
}

func TestOverlapSinglePage(t *testing.T) {
	r := Region{PhysStart: 0x0, VirtStart: 0x0, Size: 0x1000}
	m := Region{PhysStart: 0x0, Size: 0x1000}
	got, ok := Overlap(r, m)
	if !ok || got.Size != 0x1000 {
		t.Fatalf("single page overlap failed: %+v ok=%v", got, ok)
	}
}

func TestOverlapAdjacentNotOverlapping(t *testing.T) {
	r := Region{PhysStart: 0x0, Size: 0x1000}
	m := Region{PhysStart: 0x1000, Size: 0x1000}
	if _, ok := Overlap(r, m); ok {
		t.Fatal("adjacent, non-overlapping regions must not overlap")
	}
}
