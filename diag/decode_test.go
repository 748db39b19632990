package diag

import "testing"

func TestDecodeFaultEmpty(t *testing.T) {
	if got := DecodeFault(nil); got != "<no instruction bytes>" {
		t.Fatalf("DecodeFault(nil) = %q", got)
	}
}

func TestDecodeFaultValidInstruction(t *testing.T) {
	// 0xCC is INT3, a single-byte instruction on every x86 mode.
	got := DecodeFault([]byte{0xCC})
	if got == "" || got == "<no instruction bytes>" {
		t.Fatalf("DecodeFault(INT3) = %q, want a decoded mnemonic", got)
	}
}

func TestDecodeFaultNeverPanics(t *testing.T) {
	// Whether or not x86asm manages to decode this as *something*, the
	// function must not panic on truncated or nonsensical input.
	got := DecodeFault([]byte{0xF0, 0xF0, 0xF0, 0xF0})
	if got == "" {
		t.Fatal("expected a non-empty description even for odd input")
	}
}
