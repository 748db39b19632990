package lifecycle

import (
	"cellhv/cellname"
	"cellhv/defs"
	"cellhv/memregion"
	"cellhv/util"
)

// Config is the decoded form of the configuration blob spec.md §6
// describes: a header (name, cpu_set_size, num_memory_regions, flags)
// followed by a cpu-set bitmap and a region descriptor list.
type Config struct {
	Name    cellname.Name
	CPUIDs  []int
	Regions []memregion.Region
	Flags   uint32
}

const (
	headerSize = cellname.MaxLen + 4 + 4 + 4 + 4 // name, cpu_set_size, num_regions, flags, pad
	regionSize = 8 + 8 + 8 + 4 + 4                // phys, virt, size, flags, pad
)

// ConfigPages returns the number of mempool pages needed to hold a config
// blob with the given cpu-set byte size and region count. Create uses it to
// size the heap block holding a new cell's header and config copy.
func ConfigPages(cpuSetBytes, numRegions int, pageSize int) int {
	total := headerSize + cpuSetBytes + numRegions*regionSize
	return (total + pageSize - 1) / pageSize
}

// DecodeConfig parses a configuration blob from guest memory mapped
// read-only via arch.Hooks.MapTemporary, per the layout in spec.md §6.
func DecodeConfig(data []byte) (Config, defs.Err_t) {
	if len(data) < headerSize {
		return Config{}, defs.INVALID
	}
	var name cellname.Name
	copy(name[:], data[:cellname.MaxLen])
	off := cellname.MaxLen
	cpuSetBytes := util.Readn(data, 4, off)
	off += 4
	numRegions := util.Readn(data, 4, off)
	off += 4
	flags := util.Readn(data, 4, off)
	off += 4 + 4 // skip reserved pad

	if cpuSetBytes < 0 || numRegions < 0 {
		return Config{}, defs.INVALID
	}
	if off+cpuSetBytes+numRegions*regionSize > len(data) {
		return Config{}, defs.INVALID
	}

	bitmap := data[off : off+cpuSetBytes]
	off += cpuSetBytes

	var cpuIDs []int
	for i := 0; i < cpuSetBytes*8; i++ {
		byteIdx, bit := i/8, uint(i%8)
		if bitmap[byteIdx]&(1<<bit) != 0 {
			cpuIDs = append(cpuIDs, i)
		}
	}

	regions := make([]memregion.Region, numRegions)
	for i := 0; i < numRegions; i++ {
		base := off + i*regionSize
		phys := util.Readn(data, 8, base)
		virt := util.Readn(data, 8, base+8)
		size := util.Readn(data, 8, base+16)
		rflags := util.Readn(data, 4, base+24)
		regions[i] = memregion.Region{
			PhysStart: uint64(phys),
			VirtStart: uint64(virt),
			Size:      uint64(size),
			Flags:     uint32(rflags),
		}
	}

	return Config{Name: name, CPUIDs: cpuIDs, Regions: regions, Flags: uint32(flags)}, defs.ESUCCESS
}

// EncodeConfig serializes cfg to the wire layout DecodeConfig parses,
// rounding the cpu-set bitmap up to cover the highest cpu id referenced.
// Used by cmd/cellctl to turn an authored configuration into the blob a
// guest would place in its physical memory before issuing CELL_CREATE.
func EncodeConfig(cfg Config) []byte {
	maxCPU := -1
	for _, c := range cfg.CPUIDs {
		if c > maxCPU {
			maxCPU = c
		}
	}
	cpuSetBytes := (maxCPU + 1 + 7) / 8
	if cpuSetBytes == 0 {
		cpuSetBytes = 1
	}

	total := headerSize + cpuSetBytes + len(cfg.Regions)*regionSize
	out := make([]byte, total)

	copy(out[:cellname.MaxLen], cfg.Name[:])
	off := cellname.MaxLen
	util.Writen(out, 4, off, cpuSetBytes)
	off += 4
	util.Writen(out, 4, off, len(cfg.Regions))
	off += 4
	util.Writen(out, 4, off, int(cfg.Flags))
	off += 4 + 4

	for _, c := range cfg.CPUIDs {
		out[off+c/8] |= 1 << uint(c%8)
	}
	off += cpuSetBytes

	for i, r := range cfg.Regions {
		base := off + i*regionSize
		util.Writen(out, 8, base, int(r.PhysStart))
		util.Writen(out, 8, base+8, int(r.VirtStart))
		util.Writen(out, 8, base+16, int(r.Size))
		util.Writen(out, 4, base+24, int(r.Flags))
	}

	return out
}
