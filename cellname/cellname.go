// Package cellname implements the cell name carried in the configuration
// blob header (spec.md §6: "name[…]"). Adapted from biscuit/src/ustr's
// Ustr, an immutable byte-string type used for path components; this repo
// narrows that idea to a fixed-capacity, comparable name suitable for a
// map key and for the EXIST uniqueness check (spec.md §3 invariant 5).
package cellname

// MaxLen bounds a cell name's length, matching the fixed-size `name[…]`
// header field spec.md §6 describes rather than a length-prefixed string.
const MaxLen = 32

// Name is an immutable, comparable cell name.
type Name [MaxLen]byte

// New truncates s to MaxLen and returns the resulting Name. The config
// blob parser is expected to reject names that do not fit rather than
// silently truncate; New is also used directly by tests and the CLI tool
// where truncation is acceptable.
func New(s string) Name {
	var n Name
	copy(n[:], s)
	return n
}

// String returns the name with trailing NUL padding trimmed.
func (n Name) String() string {
	i := 0
	for i < len(n) && n[i] != 0 {
		i++
	}
	return string(n[:i])
}

// Eq reports whether two names hold identical bytes.
func (n Name) Eq(o Name) bool {
	return n == o
}

// Empty reports whether the name has no characters.
func (n Name) Empty() bool {
	return n[0] == 0
}
