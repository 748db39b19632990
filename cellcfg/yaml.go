// Package cellcfg lets an operator author a cell configuration as YAML
// instead of hand-building a lifecycle.Config, then turn it into the wire
// blob a guest places in physical memory before issuing CELL_CREATE
// (spec.md §6). Grounded in the broader example pack's use of
// gopkg.in/yaml.v3 for human-authored configuration, a concern biscuit
// itself has no analogue for (a kernel has no equivalent authoring step;
// its "configuration" is compiled in).
package cellcfg

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"cellhv/cellname"
	"cellhv/defs"
	"cellhv/lifecycle"
	"cellhv/memregion"
)

// Document is the YAML-facing shape of a cell configuration: plain
// integers and flag names instead of the packed bitmap and bitmask
// lifecycle.Config carries internally.
type Document struct {
	Name    string    `yaml:"name"`
	CPUs    []int     `yaml:"cpus"`
	Flags   []string  `yaml:"flags,omitempty"`
	Regions []RegionDoc `yaml:"regions"`
}

// RegionDoc is one memory-region descriptor, YAML-facing.
type RegionDoc struct {
	PhysStart uint64   `yaml:"phys_start"`
	VirtStart uint64   `yaml:"virt_start"`
	Size      uint64   `yaml:"size"`
	Flags     []string `yaml:"flags,omitempty"`
}

var regionFlagNames = map[string]uint32{
	"comm_region": defs.COMM_REGION,
	"loadable":    defs.LOADABLE,
}

var cellFlagNames = map[string]uint32{
	"passive_commreg": defs.PASSIVE_COMMREG,
}

func parseFlags(names []string, table map[string]uint32) (uint32, error) {
	var out uint32
	for _, n := range names {
		bit, ok := table[n]
		if !ok {
			return 0, fmt.Errorf("cellcfg: unrecognized flag %q", n)
		}
		out |= bit
	}
	return out, nil
}

// Decode parses a YAML document into a lifecycle.Config ready for
// lifecycle.EncodeConfig.
func Decode(data []byte) (lifecycle.Config, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return lifecycle.Config{}, fmt.Errorf("cellcfg: parse: %w", err)
	}
	if len(doc.Name) > cellname.MaxLen {
		return lifecycle.Config{}, fmt.Errorf("cellcfg: name %q exceeds %d bytes", doc.Name, cellname.MaxLen)
	}

	flags, err := parseFlags(doc.Flags, cellFlagNames)
	if err != nil {
		return lifecycle.Config{}, err
	}

	regions := make([]memregion.Region, len(doc.Regions))
	for i, r := range doc.Regions {
		rflags, err := parseFlags(r.Flags, regionFlagNames)
		if err != nil {
			return lifecycle.Config{}, err
		}
		regions[i] = memregion.Region{
			PhysStart: r.PhysStart,
			VirtStart: r.VirtStart,
			Size:      r.Size,
			Flags:     rflags,
		}
	}

	return lifecycle.Config{
		Name:    cellname.New(doc.Name),
		CPUIDs:  doc.CPUs,
		Regions: regions,
		Flags:   flags,
	}, nil
}

// Encode renders cfg back to the YAML document form Decode accepts,
// mainly for `cellctl decode`'s human-readable dump of an existing blob.
func Encode(cfg lifecycle.Config) ([]byte, error) {
	doc := Document{
		Name: cfg.Name.String(),
		CPUs: cfg.CPUIDs,
	}
	for bit, name := range invert(cellFlagNames) {
		if cfg.Flags&bit != 0 {
			doc.Flags = append(doc.Flags, name)
		}
	}
	for _, r := range cfg.Regions {
		rd := RegionDoc{PhysStart: r.PhysStart, VirtStart: r.VirtStart, Size: r.Size}
		for bit, name := range invert(regionFlagNames) {
			if r.Flags&bit != 0 {
				rd.Flags = append(rd.Flags, name)
			}
		}
		doc.Regions = append(doc.Regions, rd)
	}
	return yaml.Marshal(doc)
}

func invert(m map[string]uint32) map[uint32]string {
	out := make(map[uint32]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
