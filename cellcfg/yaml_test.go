package cellcfg

import (
	"testing"

	"cellhv/defs"
)

const sampleYAML = `
name: guest-a
cpus: [1, 2]
flags: [passive_commreg]
regions:
  - phys_start: 0x100000
    virt_start: 0x100000
    size: 0x1000
    flags: [loadable]
`

func TestDecodeParsesFlagsAndRegions(t *testing.T) {
	cfg, err := Decode([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Name.String() != "guest-a" {
		t.Fatalf("Name = %q", cfg.Name.String())
	}
	if len(cfg.CPUIDs) != 2 || cfg.CPUIDs[0] != 1 || cfg.CPUIDs[1] != 2 {
		t.Fatalf("CPUIDs = %v", cfg.CPUIDs)
	}
	if cfg.Flags != defs.PASSIVE_COMMREG {
		t.Fatalf("Flags = %d, want PASSIVE_COMMREG", cfg.Flags)
	}
	if len(cfg.Regions) != 1 || cfg.Regions[0].Flags != defs.LOADABLE {
		t.Fatalf("Regions = %+v", cfg.Regions)
	}
}

func TestDecodeRejectsUnknownFlag(t *testing.T) {
	_, err := Decode([]byte("name: x\ncpus: []\nflags: [bogus]\n"))
	if err == nil {
		t.Fatal("expected an error for an unrecognized flag name")
	}
}

func TestDecodeRejectsOverlongName(t *testing.T) {
	long := make([]byte, 0, 64)
	for i := 0; i < 40; i++ {
		long = append(long, 'a')
	}
	_, err := Decode([]byte("name: " + string(long) + "\ncpus: []\n"))
	if err == nil {
		t.Fatal("expected an error for a name exceeding cellname.MaxLen")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cfg, err := Decode([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out, err := Encode(cfg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	cfg2, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode(Encode(cfg)): %v", err)
	}
	if cfg2.Name != cfg.Name || cfg2.Flags != cfg.Flags || len(cfg2.Regions) != len(cfg.Regions) {
		t.Fatalf("round trip mismatch: got %+v want %+v", cfg2, cfg)
	}
}
