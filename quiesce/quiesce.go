// Package quiesce implements the cooperative suspend/resume protocol of
// spec.md §4.D: synchronously freeze every cpu in a cell except the
// caller, and invert that freeze on resume. Fan-out uses
// golang.org/x/sync/errgroup, grounded in the teacher's own go.mod
// requirement on golang.org/x/sync, in place of biscuit's
// architecture-specific synchronous cross-cpu IPI (out of scope per
// spec.md §1 — "suspend/resume/park/reset/shutdown of a physical CPU" is
// an external collaborator primitive this package only calls through
// arch.Hooks).
package quiesce

import (
	"golang.org/x/sync/errgroup"

	"cellhv/arch"
	"cellhv/cpuset"
)

// Quiescer drives suspend/resume over a cpu-set through an arch.Hooks
// collaborator.
type Quiescer struct {
	hooks arch.Hooks
}

// New constructs a Quiescer bound to the given architecture hooks.
func New(hooks arch.Hooks) *Quiescer {
	return &Quiescer{hooks: hooks}
}

// Token records that a Suspend has completed so the matching Resume can be
// asserted against it, mirroring the lock/unlock-assert pairing in
// biscuit/src/vm/as.go's Lock_pmap/Unlock_pmap/Lockassert_pmap (there
// guarding page-table mutation; here guarding the quiescence window a
// reconfiguration runs inside).
type Token struct {
	set    *cpuset.Set
	except int
	live   bool
}

// Suspend sends a synchronous suspend to every cpu in set except
// exceptCPU, returning only once all targets have entered the suspended
// state (spec.md §4.D). The caller must belong to exceptCPU's cell, which
// lifecycle enforces at the hypercall boundary, not here.
func (q *Quiescer) Suspend(set *cpuset.Set, exceptCPU int) (*Token, error) {
	g := new(errgroup.Group)
	for _, c := range set.AllExcept(exceptCPU) {
		c := c
		g.Go(func() error {
			return q.hooks.SuspendCPU(c)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Token{set: set, except: exceptCPU, live: true}, nil
}

// Resume inverts the suspend recorded in tok (spec.md §4.D). It panics if
// tok was already resumed, the same double-unlock protection
// Lockassert_pmap gives the teacher's page-table lock.
func (q *Quiescer) Resume(tok *Token) error {
	if tok == nil || !tok.live {
		panic("quiesce: resume without a live suspend token")
	}
	tok.live = false
	g := new(errgroup.Group)
	for _, c := range tok.set.AllExcept(tok.except) {
		c := c
		g.Go(func() error {
			return q.hooks.ResumeCPU(c)
		})
	}
	return g.Wait()
}
