// Package mempool models the physical-page allocator spec.md §6 lists among
// the external architecture collaborators ("a physical-page allocator with
// pool statistics"). The spec keeps real page-table/page-frame management
// out of the CORE's scope, but HYPERVISOR_GET_INFO must still answer
// MEM_POOL_SIZE/USED and REMAP_POOL_SIZE/USED, so the CORE needs *some*
// pool abstraction to query. This is adapted from biscuit/src/mem's
// Physmem_t: a fixed-size array of pages with a refcount per page and a
// freelist threaded through it, minus the per-cpu freelist sharding (not
// needed at control-plane scale: pools here back cpu-set overflow storage
// and cell header blocks, not guest memory allocation traffic).
package mempool

import (
	"sync"
	"sync/atomic"

	"cellhv/defs"
)

// Pa_t is an opaque physical page handle. It never escapes mempool except
// as an opaque key other packages pass back to Refup/Refdown; no package
// outside mempool reads or writes through it directly (page-table mapping
// of guest memory is out of scope per spec.md §1).
type Pa_t uintptr

// PGSHIFT and PGSIZE mirror biscuit/src/mem.PGSHIFT and PGSIZE.
const (
	PGSHIFT uint = 12
	PGSIZE  int  = 1 << PGSHIFT
)

type page struct {
	refcnt int32
	nexti  uint32
	inuse  bool
}

// Pool is a fixed-capacity set of pages with reference counting. The
// "main" pool backs cpu-set overflow bitmaps and cell header blocks. The
// "remap" pool is only queried for its size and usage
// (REMAP_POOL_SIZE/USED); nothing allocates from it, and the CELL_CREATE
// temporary window is provided by arch.Hooks.MapTemporary instead.
type Pool struct {
	mu      sync.Mutex
	pages   []page
	freei   uint32
	freelen int32
	used    int32
}

// ErrOOM is the defs.Err_t (defs.OOM) that stands for an exhausted pool.
// Alloc itself does not return it: it reports exhaustion as ok=false, and
// callers translate that to defs.OOM.
var ErrOOM = defs.OOM

const noFree = ^uint32(0)

// New creates a pool with npages pages, all initially free.
func New(npages int) *Pool {
	p := &Pool{
		pages: make([]page, npages),
		freei: 0,
	}
	for i := range p.pages {
		if i == len(p.pages)-1 {
			p.pages[i].nexti = noFree
		} else {
			p.pages[i].nexti = uint32(i + 1)
		}
	}
	p.freelen = int32(npages)
	if npages == 0 {
		p.freei = noFree
	}
	return p
}

// Size returns the pool's total page capacity.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pages)
}

// Used returns the number of currently allocated pages.
func (p *Pool) Used() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.used)
}

// Alloc returns a fresh page with refcount 1, or ok=false if the pool is
// exhausted.
func (p *Pool) Alloc() (Pa_t, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.freei == noFree {
		return 0, false
	}
	idx := p.freei
	pg := &p.pages[idx]
	p.freei = pg.nexti
	p.freelen--
	pg.refcnt = 1
	pg.inuse = true
	p.used++
	return Pa_t(idx), true
}

// Refup increments the reference count of an allocated page.
func (p *Pool) Refup(pa Pa_t) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pg := &p.pages[pa]
	if !pg.inuse {
		panic("mempool: refup on free page")
	}
	atomic.AddInt32(&pg.refcnt, 1)
}

// Refdown decrements the reference count, freeing the page and returning
// true when it reaches zero.
func (p *Pool) Refdown(pa Pa_t) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	pg := &p.pages[pa]
	if !pg.inuse {
		panic("mempool: refdown on free page")
	}
	c := atomic.AddInt32(&pg.refcnt, -1)
	if c < 0 {
		panic("mempool: refcount underflow")
	}
	if c == 0 {
		pg.inuse = false
		pg.nexti = p.freei
		p.freei = uint32(pa)
		p.freelen++
		p.used--
		return true
	}
	return false
}

// Refcnt returns the current reference count of pa.
func (p *Pool) Refcnt(pa Pa_t) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.pages[pa].refcnt)
}
