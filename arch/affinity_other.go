//go:build !linux

package arch

import "runtime"

// pinToCPU locks the goroutine to an OS thread on platforms where
// per-thread cpu affinity is not exposed through golang.org/x/sys/unix.
func pinToCPU(int) {
	runtime.LockOSThread()
}
