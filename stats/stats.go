// Package stats implements the per-cpu statistics counters spec.md §3 and
// §6 require: 32 saturating 30-bit counters per cpu, readable via
// CPU_GET_INFO(STAT_BASE+i). Adapted from biscuit/src/stats, which gates a
// similar Counter_t behind a compile-time Stats flag; this repo's counters
// are always live since CPU_GET_INFO is a real, always-available query
// rather than a debug build knob.
package stats

import "sync/atomic"

// Mask30 is the saturation ceiling spec.md §6 specifies ("Statistics are
// returned with 30 significant bits").
const Mask30 = 1<<30 - 1

// Counter_t is a single saturating statistics counter, safe for concurrent
// increment by the owning cpu and concurrent read by any cpu running
// CPU_GET_INFO.
type Counter_t struct {
	v int32
}

// Inc increments the counter by one, saturating at Mask30 rather than
// wrapping, since a wrapped counter would misreport a healthy cpu as one
// that reset its statistics.
func (c *Counter_t) Inc() {
	c.Add(1)
}

// Add adds delta to the counter, saturating at Mask30.
func (c *Counter_t) Add(delta int32) {
	for {
		old := atomic.LoadInt32(&c.v)
		n := old + delta
		if n > Mask30 {
			n = Mask30
		}
		if n < 0 {
			n = 0
		}
		if atomic.CompareAndSwapInt32(&c.v, old, n) {
			return
		}
	}
}

// Get returns the counter's current (possibly torn, per spec.md §5) value.
func (c *Counter_t) Get() uint32 {
	return uint32(atomic.LoadInt32(&c.v)) & Mask30
}

// Reset zeroes the counter. Used (through Block.ResetAll) when a cpu is
// re-homed to another cell (spec.md §4.F: "zero stats").
func (c *Counter_t) Reset() {
	atomic.StoreInt32(&c.v, 0)
}

// Block is the fixed-size array of per-cpu counters named by
// defs.StatKind. Kept as a plain array (not a slice) so a Percpu_t can
// embed it without a separate heap allocation, matching the teacher's
// preference for inline fixed-size fields (mem.Physpg_t, accnt.Accnt_t).
type Block [32]Counter_t

// Get returns counter i's value, or 0 if i is out of range.
func (b *Block) Get(i int) uint32 {
	if i < 0 || i >= len(b) {
		return 0
	}
	return b[i].Get()
}

// ResetAll zeroes every counter in the block.
func (b *Block) ResetAll() {
	for i := range b {
		b[i].Reset()
	}
}
