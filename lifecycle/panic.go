package lifecycle

import (
	"sync/atomic"

	"cellhv/defs"
	"cellhv/diag"
	"cellhv/ringlog"
)

// panicInProgress and panicCPU implement spec.md §4.G's "global
// panic_in_progress flag ... cleared when the panicking physical cpu
// matches the recorded panic_cpu". They are process-wide like the root
// cell and the shutdown lock (spec.md §9's third load-bearing global), so
// they live as package-level state rather than Hypervisor fields — every
// cpu in the process observes the same panic, regardless of which
// Hypervisor value a future test harness constructs.
var (
	panicInProgress atomic.Bool
	panicCPU        atomic.Int64
)

// PanicStop implements spec.md §4.G's panic_stop(cpu): marks the cpu
// stopped and invokes the architectural stop.
func (h *Hypervisor) PanicStop(cpu int) {
	h.PanicStopWithFault(cpu, nil)
}

// PanicStopWithFault is PanicStop plus a best-effort decode of the
// faulting instruction (instrBytes, if the caller captured any) for the
// ringlog record. Repeated faults at the same call site are logged once
// per site, not once per fault, so a looping faulting cpu cannot flood the
// ring (diag.DistinctCaller; there is no console to throttle output on,
// per spec.md §1's scope).
func (h *Hypervisor) PanicStopWithFault(cpu int, instrBytes []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pc, ok := h.PerCPU[cpu]
	if !ok {
		return
	}
	pc.CPUStopped = true
	panicInProgress.Store(true)
	panicCPU.Store(int64(cpu))
	h.Hooks.PanicStop(cpu)

	site := diag.CallerString(1)
	if h.faultSeen.First(site) {
		h.Events.Append(ringlog.Event{
			Kind:   "panic_stop",
			CellID: pc.Cell.ID,
			Detail: diag.DecodeFault(instrBytes) + " at " + site,
		})
	}
}

// PanicHalt implements spec.md §4.G's panic_halt(cpu): marks the cpu
// failed, and if every cpu in its cell has failed, transitions the cell to
// FAILED. Clears panic_in_progress when this cpu is the one that set it.
func (h *Hypervisor) PanicHalt(cpu int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	pc, ok := h.PerCPU[cpu]
	if !ok {
		return
	}
	pc.Failed = true
	h.Hooks.PanicHalt(cpu)

	c := pc.Cell
	allFailed := true
	for _, id := range c.CPUSet.All() {
		if !h.PerCPU[id].Failed {
			allFailed = false
			break
		}
	}
	if allFailed {
		c.Comm.SetState(defs.FAILED)
	}

	if panicInProgress.Load() && panicCPU.Load() == int64(cpu) {
		panicInProgress.Store(false)
	}
}

// PanicInProgress reports the global panic flag other cpus poll to decide
// whether to abort their own in-flight work (spec.md §4.G).
func PanicInProgress() bool {
	return panicInProgress.Load()
}
