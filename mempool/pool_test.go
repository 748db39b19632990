package mempool

import "testing"

func TestAllocRefcountFree(t *testing.T) {
	p := New(2)
	if p.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", p.Size())
	}
	a, ok := p.Alloc()
	if !ok {
		t.Fatal("expected a free page")
	}
	if p.Used() != 1 {
		t.Fatalf("Used() = %d, want 1", p.Used())
	}
	if p.Refcnt(a) != 1 {
		t.Fatalf("Refcnt() = %d, want 1", p.Refcnt(a))
	}

	p.Refup(a)
	if p.Refcnt(a) != 2 {
		t.Fatalf("Refcnt() after Refup = %d, want 2", p.Refcnt(a))
	}
	if freed := p.Refdown(a); freed {
		t.Fatal("page should not be freed yet")
	}
	if freed := p.Refdown(a); !freed {
		t.Fatal("page should be freed on last Refdown")
	}
	if p.Used() != 0 {
		t.Fatalf("Used() after free = %d, want 0", p.Used())
	}
}

func TestAllocExhaustion(t *testing.T) {
	p := New(1)
	if _, ok := p.Alloc(); !ok {
		t.Fatal("expected the one page to be allocatable")
	}
	if _, ok := p.Alloc(); ok {
		t.Fatal("expected OOM on the second allocation")
	}
}

func TestFreedPageReusable(t *testing.T) {
	p := New(1)
	a, _ := p.Alloc()
	p.Refdown(a)
	b, ok := p.Alloc()
	if !ok {
		t.Fatal("expected the freed page to be reusable")
	}
	if b != a {
		t.Fatalf("expected the single freed page to be reallocated, got %d want %d", b, a)
	}
}

func TestRefdownUnderflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic on refcount underflow")
		}
	}()
	p := New(1)
	a, _ := p.Alloc()
	p.Refdown(a)
	p.Refdown(a)
}
