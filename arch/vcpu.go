package arch

import "sync"

// vcpu is the goroutine standing in for a physical cpu's guest-execution
// context. It has no notion of instructions or a vmexit loop — that is the
// out-of-scope "architecture-specific CPU virtualization primitive" spec.md
// §1 excludes — it only answers suspend/resume synchronously, which is all
// the CORE needs from a physical cpu.
//
// suspend/resume/stop are serialized through mu rather than a channel
// handshake: an earlier channel-based design had a lost-wakeup race where
// resume() could run (and hit its non-blocking default case) before the
// vcpu goroutine had rescheduled into the state that would receive it,
// permanently stranding the cpu suspended. A mutex-guarded state flag has
// no such window.
type vcpu struct {
	id int

	mu        sync.Mutex
	suspended bool
	stopped   bool
	resumeC   chan struct{} // non-nil only while suspended
	done      chan struct{}
}

func newVCPU(id int) *vcpu {
	v := &vcpu{id: id, done: make(chan struct{})}
	go func() {
		pinToCPU(v.id)
		<-v.done
	}()
	return v
}

// suspend marks the vcpu suspended. Idempotent.
func (v *vcpu) suspend() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped || v.suspended {
		return
	}
	v.suspended = true
	v.resumeC = make(chan struct{})
}

// resume releases a suspended vcpu. It is a no-op if the vcpu was never
// suspended or has already been torn down.
func (v *vcpu) resume() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.suspended {
		return
	}
	v.suspended = false
	close(v.resumeC)
	v.resumeC = nil
}

// stop permanently retires the vcpu goroutine (used by ParkCPU/ShutdownCPU).
func (v *vcpu) stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.stopped {
		return
	}
	v.stopped = true
	if v.resumeC != nil {
		close(v.resumeC)
		v.resumeC = nil
	}
	close(v.done)
}
