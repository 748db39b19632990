package lifecycle_test

import (
	"testing"

	"cellhv/arch"
	"cellhv/cell"
	"cellhv/cellname"
	"cellhv/defs"
	"cellhv/lifecycle"
	"cellhv/memregion"
	"cellhv/mempool"
)

const ncpus = 4

func newTestHypervisor(t *testing.T) (*lifecycle.Hypervisor, []byte) {
	t.Helper()
	guestImage := make([]byte, 64*mempool.PGSIZE)
	simarch := arch.NewSimArch(ncpus, guestImage)
	pool := mempool.New(64)
	remapPool := mempool.New(16)
	rootRegions := []memregion.Region{{PhysStart: 0, VirtStart: 0, Size: uint64(len(guestImage))}}
	hv := lifecycle.New(ncpus, rootRegions, simarch, pool, remapPool)
	return hv, guestImage
}

// passiveConfig builds a one-cpu, one-region, auto-approving guest
// configuration and writes its wire blob to gpa 0 of guestImage.
func passiveConfig(t *testing.T, guestImage []byte, name string, cpu int) {
	t.Helper()
	cfg := lifecycle.Config{
		Name:   cellname.New(name),
		CPUIDs: []int{cpu},
		Regions: []memregion.Region{
			{PhysStart: uint64(8 * mempool.PGSIZE), VirtStart: uint64(8 * mempool.PGSIZE), Size: uint64(mempool.PGSIZE)},
		},
		Flags: defs.PASSIVE_COMMREG,
	}
	blob := lifecycle.EncodeConfig(cfg)
	if len(blob) > len(guestImage) {
		t.Fatalf("config blob (%d bytes) does not fit the guest image", len(blob))
	}
	copy(guestImage, blob)
}

func TestCreateStartGetStateDestroyRoundTrip(t *testing.T) {
	hv, guestImage := newTestHypervisor(t)
	passiveConfig(t, guestImage, "guest-a", 2)

	id, err := hv.Create(0, 0)
	if err != defs.ESUCCESS {
		t.Fatalf("Create: %v", err)
	}
	if id < 0 {
		t.Fatalf("Create returned negative id %d", id)
	}

	state, err := hv.GetState(0, id)
	if err != defs.ESUCCESS || state != defs.SHUT_DOWN {
		t.Fatalf("GetState after create = (%v, %v), want (SHUT_DOWN, ESUCCESS)", state, err)
	}

	if err := hv.Start(0, id); err != defs.ESUCCESS {
		t.Fatalf("Start: %v", err)
	}
	state, err = hv.GetState(0, id)
	if err != defs.ESUCCESS || state != defs.RUNNING {
		t.Fatalf("GetState after start = (%v, %v), want (RUNNING, ESUCCESS)", state, err)
	}

	if err := hv.Destroy(0, id); err != defs.ESUCCESS {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := hv.GetState(0, id); err != defs.NOENT {
		t.Fatalf("GetState after destroy = %v, want NOENT", err)
	}
	if hv.Registry.NumCells() != 1 {
		t.Fatalf("NumCells after destroy = %d, want 1 (root only)", hv.Registry.NumCells())
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	hv, guestImage := newTestHypervisor(t)
	passiveConfig(t, guestImage, "dup", 1)
	if _, err := hv.Create(0, 0); err != defs.ESUCCESS {
		t.Fatalf("first Create: %v", err)
	}
	if _, err := hv.Create(0, 0); err != defs.EXIST {
		t.Fatalf("second Create with the same name = %v, want EXIST", err)
	}
}

func TestCreateRejectsCallerOwnCPU(t *testing.T) {
	hv, guestImage := newTestHypervisor(t)
	passiveConfig(t, guestImage, "takes-caller", 0)
	if _, err := hv.Create(0, 0); err != defs.BUSY {
		t.Fatalf("Create requesting the caller's own cpu = %v, want BUSY", err)
	}
}

func TestNonRootCallerRejected(t *testing.T) {
	hv, _ := newTestHypervisor(t)
	hv.PerCPU[1].Cell = &cell.Cell{ID: 7, Name: cellname.New("not-root")}

	if _, err := hv.Create(1, 0); err != defs.PERM {
		t.Fatalf("Create from a non-root caller = %v, want PERM", err)
	}
	if err := hv.Start(1, 0); err != defs.PERM {
		t.Fatalf("Start from a non-root caller = %v, want PERM", err)
	}
	if _, err := hv.GetState(1, 0); err != defs.PERM {
		t.Fatalf("GetState from a non-root caller = %v, want PERM", err)
	}
}

func TestStartUnknownCellIsNoent(t *testing.T) {
	hv, _ := newTestHypervisor(t)
	if err := hv.Start(0, 99); err != defs.NOENT {
		t.Fatalf("Start(unknown) = %v, want NOENT", err)
	}
}

func TestDestroyRootIsInvalid(t *testing.T) {
	hv, _ := newTestHypervisor(t)
	if err := hv.Destroy(0, lifecycle.RootID); err != defs.INVALID {
		t.Fatalf("Destroy(root) = %v, want INVALID", err)
	}
}

func TestShutdownWithNoGuestsSucceeds(t *testing.T) {
	hv, _ := newTestHypervisor(t)
	if err := hv.Shutdown(0); err != defs.ESUCCESS {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestSetLoadableIsIdempotentAndUnmapsOnStart(t *testing.T) {
	hv, guestImage := newTestHypervisor(t)
	cfg := lifecycle.Config{
		Name:   cellname.New("loadable-guest"),
		CPUIDs: []int{1},
		Regions: []memregion.Region{
			{PhysStart: uint64(8 * mempool.PGSIZE), VirtStart: uint64(8 * mempool.PGSIZE), Size: uint64(mempool.PGSIZE), Flags: defs.LOADABLE},
		},
		Flags: defs.PASSIVE_COMMREG,
	}
	copy(guestImage, lifecycle.EncodeConfig(cfg))

	id, err := hv.Create(0, 0)
	if err != defs.ESUCCESS {
		t.Fatalf("Create: %v", err)
	}

	if err := hv.SetLoadable(0, id); err != defs.ESUCCESS {
		t.Fatalf("SetLoadable: %v", err)
	}
	if err := hv.SetLoadable(0, id); err != defs.ESUCCESS {
		t.Fatalf("second, idempotent SetLoadable: %v", err)
	}

	loadablePhys := uint64(8 * mempool.PGSIZE)
	rootHasRegion := func() bool {
		for _, m := range hv.Hooks.(*arch.SimArch).Mapped(lifecycle.RootID) {
			if m.PhysStart == loadablePhys {
				return true
			}
		}
		return false
	}
	if !rootHasRegion() {
		t.Fatal("SetLoadable did not remap the LOADABLE region into root")
	}

	// Start on a loadable cell must unmap its LOADABLE regions from root
	// and clear loadable before transitioning to RUNNING.
	if err := hv.Start(0, id); err != defs.ESUCCESS {
		t.Fatalf("Start: %v", err)
	}
	state, err := hv.GetState(0, id)
	if err != defs.ESUCCESS || state != defs.RUNNING {
		t.Fatalf("GetState after start = (%v, %v), want (RUNNING, ESUCCESS)", state, err)
	}
	if rootHasRegion() {
		t.Fatal("Start did not unmap the LOADABLE region from root")
	}
}

func TestPanicHaltTransitionsCellToFailedWhenAllCPUsFail(t *testing.T) {
	hv, guestImage := newTestHypervisor(t)
	passiveConfig(t, guestImage, "single-cpu-guest", 1)
	id, err := hv.Create(0, 0)
	if err != defs.ESUCCESS {
		t.Fatalf("Create: %v", err)
	}
	if err := hv.Start(0, id); err != defs.ESUCCESS {
		t.Fatalf("Start: %v", err)
	}

	hv.PanicHalt(1)

	state, err := hv.GetState(0, id)
	if err != defs.ESUCCESS || state != defs.FAILED {
		t.Fatalf("GetState after every cpu panic_halt = (%v, %v), want (FAILED, ESUCCESS)", state, err)
	}
	if lifecycle.PanicInProgress() {
		t.Fatal("panic_in_progress must stay false when panic_stop was never called")
	}
}

func TestShutdownDeniedByGuest(t *testing.T) {
	hv, guestImage := newTestHypervisor(t)
	passiveConfig(t, guestImage, "vetoer", 1)
	id, err := hv.Create(0, 0)
	if err != defs.ESUCCESS {
		t.Fatalf("Create: %v", err)
	}
	// Flip the guest back to non-passive and have it deny the shutdown
	// handshake explicitly, since SendAndWait only auto-approves passive
	// cells or cells already at SHUT_DOWN/FAILED.
	target, _ := hv.Registry.FindByID(id)
	target.Flags = 0
	target.Comm.SetState(defs.RUNNING_LOCKED)
	target.Comm.ReplyFromCell.Store(uint32(defs.REQUEST_DENIED))

	if err := hv.Shutdown(0); err != defs.PERM {
		t.Fatalf("Shutdown vetoed by a guest = %v, want PERM", err)
	}
}
