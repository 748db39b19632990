package cpuset

import (
	"testing"

	"cellhv/defs"
	"cellhv/mempool"
)

func TestInlineBasics(t *testing.T) {
	s, err := New(8, nil)
	if err != defs.ESUCCESS {
		t.Fatalf("New: %v", err)
	}
	s.SetCPU(2)
	s.SetCPU(5)
	if !s.Contains(2) || !s.Contains(5) {
		t.Fatal("expected members set")
	}
	if s.Contains(3) {
		t.Fatal("unexpected member")
	}
	got := s.All()
	want := []int{2, 5}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("All() = %v, want %v", got, want)
	}
	s.Clear(2)
	if s.Contains(2) {
		t.Fatal("clear failed")
	}
}

func TestNextExcept(t *testing.T) {
	s, _ := New(8, nil)
	s.SetCPU(0)
	s.SetCPU(1)
	s.SetCPU(2)
	got := s.AllExcept(1)
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("AllExcept(1) = %v", got)
	}
}

func TestOverflowPage(t *testing.T) {
	pool := mempool.New(4)
	s, err := New(512, pool)
	if err != defs.ESUCCESS {
		t.Fatalf("New large: %v", err)
	}
	if !s.usesOvfl {
		t.Fatal("expected overflow storage for 512-cpu set")
	}
	s.SetCPU(500)
	if !s.Contains(500) {
		t.Fatal("overflow bit not set")
	}
	s.Free()
	if pool.Used() != 0 {
		t.Fatalf("page not returned to pool: used=%d", pool.Used())
	}
}

func TestTooLarge(t *testing.T) {
	pool := mempool.New(4)
	// One page holds mempool.PGSIZE/8 words = 512 words = 32768 bits.
	_, err := New(1<<20, pool)
	if err != defs.TOO_BIG {
		t.Fatalf("expected TOO_BIG, got %v", err)
	}
}

func TestOOM(t *testing.T) {
	pool := mempool.New(0)
	_, err := New(512, pool)
	if err != defs.OOM {
		t.Fatalf("expected OOM, got %v", err)
	}
}

func TestSubsetAndDisjoint(t *testing.T) {
	a, _ := New(8, nil)
	b, _ := New(8, nil)
	a.SetCPU(1)
	a.SetCPU(2)
	b.SetCPU(1)
	b.SetCPU(2)
	b.SetCPU(3)
	if !a.SubsetOf(b) {
		t.Fatal("expected a subset of b")
	}
	c, _ := New(8, nil)
	c.SetCPU(4)
	if !a.Disjoint(c) {
		t.Fatal("expected a disjoint from c")
	}
	if a.Disjoint(b) {
		t.Fatal("expected a and b to intersect")
	}
}
