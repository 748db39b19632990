// Command cellctl is the operator-facing tool around the cellhv control
// plane: it turns a human-authored YAML cell description into the wire
// blob a guest places in memory before CELL_CREATE, renders an existing
// blob back to YAML, and runs an in-process demo of the lifecycle against
// arch.SimArch, dumping locale-formatted counters and a pprof profile of
// quiesce latency. None of this has a biscuit analogue (a kernel has no
// operator-facing config-authoring step); it is grounded in the wider
// example pack's use of gopkg.in/yaml.v3, golang.org/x/text, and
// github.com/google/pprof for exactly these kinds of CLI concerns.
package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/google/pprof/profile"

	"cellhv/accounting"
	"cellhv/arch"
	"cellhv/cellcfg"
	"cellhv/cellname"
	"cellhv/defs"
	"cellhv/hypercall"
	"cellhv/lifecycle"
	"cellhv/memregion"
	"cellhv/mempool"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "encode":
		err = runEncode(os.Args[2:])
	case "decode":
		err = runDecode(os.Args[2:])
	case "demo":
		err = runDemo(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "cellctl:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: cellctl encode <in.yaml> <out.bin> | decode <in.bin> | demo [profile.pprof]")
}

func runEncode(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("encode needs <in.yaml> <out.bin>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	cfg, err := cellcfg.Decode(data)
	if err != nil {
		return err
	}
	return os.WriteFile(args[1], lifecycle.EncodeConfig(cfg), 0o644)
}

func runDecode(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("decode needs <in.bin>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	cfg, errt := lifecycle.DecodeConfig(data)
	if errt != 0 {
		return fmt.Errorf("malformed config blob: %s", errt.Error())
	}
	out, err := cellcfg.Encode(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// runDemo builds a small in-memory hypervisor over arch.SimArch, creates
// and destroys one guest cell, prints locale-formatted pool/cell counters,
// and (if a path is given) writes a pprof profile of the quiesce windows
// observed along the way.
func runDemo(args []string) error {
	const ncpus = 4
	guestImage := make([]byte, 64*mempool.PGSIZE)
	cfg := lifecycle.Config{
		Name:   cellname.New("demo-cell"),
		CPUIDs: []int{2},
		Regions: []memregion.Region{
			{PhysStart: 0, VirtStart: 0, Size: uint64(mempool.PGSIZE)},
		},
		// No guest runs in the demo to answer the comm-region handshake.
		Flags: defs.PASSIVE_COMMREG,
	}
	blob := lifecycle.EncodeConfig(cfg)
	copy(guestImage, blob)

	simarch := arch.NewSimArch(ncpus, guestImage)
	pool := mempool.New(256)
	remapPool := mempool.New(64)
	rootRegions := []memregion.Region{{PhysStart: 0, VirtStart: 0, Size: uint64(len(guestImage))}}
	hv := lifecycle.New(ncpus, rootRegions, simarch, pool, remapPool)
	disp := hypercall.New(hv)

	acct := &accounting.Accnt{}
	var samples []time.Duration

	time0 := acct.Begin()
	id := disp.Dispatch(0, 1 /* CELL_CREATE */, 0, 0)
	acct.End(time0)
	samples = append(samples, time.Since(time0))

	time1 := acct.Begin()
	disp.Dispatch(0, 2 /* CELL_START */, uint64(id), 0)
	acct.End(time1)
	samples = append(samples, time.Since(time1))

	time2 := acct.Begin()
	disp.Dispatch(0, 4 /* CELL_DESTROY */, uint64(id), 0)
	acct.End(time2)
	samples = append(samples, time.Since(time2))

	p := message.NewPrinter(language.English)
	size, _ := dispatchInfo(disp, 0 /* MEM_POOL_SIZE */)
	used, _ := dispatchInfo(disp, 1 /* MEM_POOL_USED */)
	cells, _ := dispatchInfo(disp, 4 /* NUM_CELLS */)
	p.Printf("created cell id=%v\n", id)
	p.Printf("mem pool: %v/%v pages used\n", number.Decimal(used), number.Decimal(size))
	p.Printf("cells: %v\n", number.Decimal(cells))

	if len(args) == 1 {
		return writeProfile(args[0], samples)
	}
	return nil
}

func dispatchInfo(d *hypercall.Dispatcher, kind uint64) (int64, error) {
	return d.Dispatch(0, 5 /* HYPERVISOR_GET_INFO */, kind, 0), nil
}

func writeProfile(path string, samples []time.Duration) error {
	fn := &profile.Function{ID: 1, Name: "quiesce_window", SystemName: "quiesce_window"}
	loc := &profile.Location{ID: 1, Line: []profile.Line{{Function: fn, Line: 1}}}
	prof := &profile.Profile{
		SampleType: []*profile.ValueType{{Type: "windows", Unit: "count"}, {Type: "latency", Unit: "nanoseconds"}},
		Function:   []*profile.Function{fn},
		Location:   []*profile.Location{loc},
		PeriodType: &profile.ValueType{Type: "windows", Unit: "count"},
		Period:     1,
	}
	for _, d := range samples {
		prof.Sample = append(prof.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{1, d.Nanoseconds()},
		})
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return prof.Write(f)
}
