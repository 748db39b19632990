//go:build linux

package arch

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCPU locks the calling goroutine to its own OS thread and, best
// effort, pins that thread to logical cpu id (mod NumCPU so the
// simulation never asks for a cpu id the host doesn't have). This gives
// the vcpu goroutine model a genuine cpu-affinity mapping instead of being
// purely cooperative, grounded in the teacher's own go.mod requirement on
// golang.org/x/sys.
func pinToCPU(id int) {
	runtime.LockOSThread()
	n := runtime.NumCPU()
	if n <= 0 {
		return
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(id % n)
	// Best effort: an unprivileged or sandboxed process may not be allowed
	// to change its affinity mask, which is not a correctness requirement
	// for the simulation (only suspend/resume ordering is).
	_ = unix.SchedSetaffinity(0, &set)
}
