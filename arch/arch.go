// Package arch defines the architecture collaborator interface spec.md §6
// lists as out of scope for the CORE but consumed through: cpu
// suspend/resume/park/reset/shutdown, VMCS-equivalent cell create/destroy,
// memory-region map/unmap, architectural configuration commit, and the
// temporary-window helper used to map a guest configuration blob. The CORE
// (package lifecycle) only ever calls through this interface; simarch.go
// supplies the one implementation this repo ships, a goroutine-based
// simulation since no real guest hardware exists in a hosted Go process.
package arch

import "cellhv/memregion"

// Hooks is the full architecture collaborator surface (spec.md §6).
type Hooks interface {
	memregion.Mapper

	// SuspendCPU and ResumeCPU are the synchronous cross-cpu primitives
	// quiesce.Suspend/Resume build on (spec.md §4.D).
	SuspendCPU(cpuID int) error
	ResumeCPU(cpuID int) error

	// ParkCPU removes a cpu from guest execution permanently (used when a
	// cpu changes cell ownership); ResetCPU reinitializes a cpu's
	// architectural state (used by start()).
	ParkCPU(cpuID int) error
	ResetCPU(cpuID int) error

	// ShutdownCPU and Shutdown perform the architectural teardown used by
	// the global shutdown hypercall (spec.md §4.G).
	ShutdownCPU(cpuID int) error
	Shutdown() error

	// PanicStop and PanicHalt implement the panic paths of spec.md §4.G.
	PanicStop(cpuID int) error
	PanicHalt(cpuID int) error

	// CellCreate and CellDestroy perform whatever architecture-specific
	// setup/teardown a cell needs beyond cpu and memory bookkeeping (e.g.
	// VMCS/VMCB construction in a real hypervisor).
	CellCreate(cellID int) error
	CellDestroy(cellID int) error

	// ConfigCommit makes accumulated map/unmap calls since the last commit
	// visible to hardware (spec.md §4.F: "commit architectural
	// configuration").
	ConfigCommit() error

	// MapTemporary maps npages guest-physical pages starting at gpa
	// read-only into a bounded hypervisor window (spec.md §6), returning a
	// byte slice view and a release function. ok is false if npages
	// exceeds the window's capacity.
	MapTemporary(gpa uint64, npages int) (data []byte, release func(), ok bool)
}
