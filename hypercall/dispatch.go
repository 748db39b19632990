// Package hypercall implements the entry point of spec.md §4.G: the
// numeric-code-plus-two-word-arguments ABI that routes a guest cpu's
// hypercall into the lifecycle manager or an info/shutdown/panic query.
// Grounded on biscuit/src/syscall's Syscall dispatch table (a per-cpu
// counter bumped before a switch on the call number), generalized here
// from a fixed Linux-syscall switch to a small, closed hypercall set.
package hypercall

import (
	"sync"
	"sync/atomic"

	"cellhv/defs"
	"cellhv/lifecycle"
)

// Dispatcher routes hypercalls to a lifecycle.Hypervisor and tracks a
// per-cpu call counter (spec.md §4.G: "Dispatch increments a per-cpu
// hypercall counter then selects by code").
type Dispatcher struct {
	hv *lifecycle.Hypervisor

	mu       sync.Mutex
	counters map[int]*int64
}

// New constructs a Dispatcher bound to hv.
func New(hv *lifecycle.Hypervisor) *Dispatcher {
	return &Dispatcher{hv: hv, counters: make(map[int]*int64)}
}

func (d *Dispatcher) counter(cpu int) *int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.counters[cpu]
	if !ok {
		c = new(int64)
		d.counters[cpu] = c
	}
	return c
}

// CallCount returns how many hypercalls cpu has issued.
func (d *Dispatcher) CallCount(cpu int) int64 {
	return atomic.LoadInt64(d.counter(cpu))
}

// PanicStop and PanicHalt are not hypercalls — an exception handler calls
// them directly on the faulting cpu, outside the guest-initiated dispatch
// path — but Dispatcher exposes them so a caller holding only a
// *Dispatcher still has a route to the panic paths of spec.md §4.G.
func (d *Dispatcher) PanicStop(cpu int) { d.hv.PanicStop(cpu) }
func (d *Dispatcher) PanicHalt(cpu int) { d.hv.PanicHalt(cpu) }

// Dispatch routes one hypercall. It returns the hypercall-ABI encoding of
// the result: a non-negative success value (cell id, 0, or a queried
// counter) or a negative defs.Err_t.
func (d *Dispatcher) Dispatch(callerCPU int, code defs.Hcall_t, arg1, arg2 uint64) int64 {
	atomic.AddInt64(d.counter(callerCPU), 1)

	switch code {
	case defs.DISABLE:
		return int64(d.hv.Shutdown(callerCPU).Neg())

	case defs.CELL_CREATE:
		id, err := d.hv.Create(callerCPU, arg1)
		if err != defs.ESUCCESS {
			return int64(err.Neg())
		}
		return int64(id)

	case defs.CELL_START:
		return int64(d.hv.Start(callerCPU, int(arg1)).Neg())

	case defs.CELL_SET_LOADABLE:
		return int64(d.hv.SetLoadable(callerCPU, int(arg1)).Neg())

	case defs.CELL_DESTROY:
		return int64(d.hv.Destroy(callerCPU, int(arg1)).Neg())

	case defs.HYPERVISOR_GET_INFO:
		v, err := hypervisorInfo(d.hv, defs.InfoKind_t(arg1))
		if err != defs.ESUCCESS {
			return int64(err.Neg())
		}
		return int64(v)

	case defs.CELL_GET_STATE:
		state, err := d.hv.GetState(callerCPU, int(arg1))
		if err != defs.ESUCCESS {
			return int64(err.Neg())
		}
		return int64(state)

	case defs.CPU_GET_INFO:
		v, err := cpuInfo(d.hv, callerCPU, int(arg1), defs.InfoKind_t(arg2))
		if err != defs.ESUCCESS {
			return int64(err.Neg())
		}
		return int64(v)

	default:
		return int64(defs.NOSYS.Neg())
	}
}
