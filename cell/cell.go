// Package cell holds the partition data model of spec.md §3: the Cell
// type, its comm region, per-cpu records, and the cell registry. Grounded
// structurally on biscuit/src/accnt.Accnt_t (a mutex-guarded record with a
// snapshot accessor) for CommRegion, and on spec.md §9's Design Notes,
// which explicitly permit an arena-with-stable-indices registry in place
// of the source's intrusive linked list — adopted here because cpu→cell
// lookup must be O(1) and the registry is small and bounded.
package cell

import (
	"sync/atomic"

	"cellhv/cellname"
	"cellhv/cpuset"
	"cellhv/defs"
	"cellhv/memregion"
	"cellhv/mempool"
	"cellhv/stats"
)

// CommRegion is the shared page between hypervisor and one guest cell
// (spec.md §6). Each field follows single-writer-per-field discipline:
// the hypervisor writes CellState and MsgToCell on hypervisor-initiated
// transitions; the guest writes CellState and ReplyFromCell on
// guest-initiated transitions. atomic.Uint32 gives the acquire/release
// ordering spec.md §9 calls for without a lock on the hot spin path.
type CommRegion struct {
	CellState     atomic.Uint32
	MsgToCell     atomic.Uint32
	ReplyFromCell atomic.Uint32
}

func (c *CommRegion) State() defs.CellState_t {
	return defs.CellState_t(c.CellState.Load())
}

func (c *CommRegion) SetState(s defs.CellState_t) {
	c.CellState.Store(uint32(s))
}

func (c *CommRegion) SetMsg(m defs.MsgCode_t) {
	c.MsgToCell.Store(uint32(m))
}

func (c *CommRegion) Reply() defs.ReplyCode_t {
	return defs.ReplyCode_t(c.ReplyFromCell.Load())
}

// PerCPU is the per-physical-cpu record of spec.md §3.
type PerCPU struct {
	CPUID           int
	Cell            *Cell
	Failed          bool
	ShutdownState   ShutdownState_t
	ShutdownErrCode defs.Err_t // valid iff ShutdownState == ShutdownErr
	CPUStopped      bool
	Stats           stats.Block
}

// ShutdownState_t is the per-cpu shutdown_state of spec.md §4.G.
type ShutdownState_t int

const (
	ShutdownNone ShutdownState_t = iota
	ShutdownStarted
	ShutdownErr // holds a defs.Err_t in ShutdownErrCode when set
)

// Cell is a partition (spec.md §3).
type Cell struct {
	ID        int
	Name      cellname.Name
	CPUSet    *cpuset.Set
	Regions   []memregion.Region
	Flags     uint32
	Comm      CommRegion
	Loadable  bool
	DataPages int
	DataBlock []mempool.Pa_t // pages backing the cell header + config copy, freed on destroy
}

func (c *Cell) IsRoot() bool {
	return c.ID == memregion.RootID
}

// Passive reports whether the cell asserts PASSIVE_COMMREG (spec.md §6):
// it will not cooperate via the comm region, so all messages are
// auto-approved.
func (c *Cell) Passive() bool {
	return c.Flags&defs.PASSIVE_COMMREG != 0
}
