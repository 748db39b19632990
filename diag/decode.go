package diag

import "golang.org/x/arch/x86asm"

// DecodeFault best-effort disassembles the instruction a faulting cpu was
// executing, for the ringlog entry panic_stop records. Adapted from
// nothing in biscuit (it has no x86 instruction decoder; console/printk
// and fault diagnostics are explicitly out of scope per spec.md §1), and
// grounded instead in the wider example pack's use of golang.org/x/arch/
// x86asm for disassembly. Returns a placeholder string if code does not
// start with a decodable instruction.
func DecodeFault(code []byte) string {
	if len(code) == 0 {
		return "<no instruction bytes>"
	}
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return "<undecodable: " + err.Error() + ">"
	}
	return x86asm.GNUSyntax(inst, 0, nil)
}
