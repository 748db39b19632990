// Package defs holds the constants shared across the control plane: the
// hypercall ABI error codes, hypercall numbers, info kinds, and the
// comm-region wire codes. It plays the role biscuit/src/defs plays for the
// kernel: a leaf package every other package imports, with no imports of its
// own beyond fmt for Err_t's Error method.
package defs

import "fmt"

// Err_t is the hypervisor's signed-word error return, mirroring the
// hypercall ABI (spec.md §6): a hypercall returns a negative Err_t on
// failure and a non-negative value (often 0) on success. It is used instead
// of Go's error interface throughout the lifecycle and hypercall packages
// because every caller in this ABI communicates across the guest/hypervisor
// boundary as a signed integer, not as a rich error value.
type Err_t int

// Error kinds. Zero is success; all error kinds are negative when returned
// from a hypercall, matching -defs.ENOMEM-style usage in the teacher.
const (
	ESUCCESS Err_t = 0
	PERM     Err_t = 1 /// operation not permitted for the caller
	NOENT    Err_t = 2 /// no such cell
	INVALID  Err_t = 3 /// malformed argument
	EXIST    Err_t = 4 /// duplicate name
	BUSY     Err_t = 5 /// cpu-set conflict
	OOM      Err_t = 6 /// allocation failure
	TOO_BIG  Err_t = 7 /// exceeds a bounded window
	NOSYS    Err_t = 8 /// unknown hypercall code
)

var errnames = map[Err_t]string{
	ESUCCESS: "success",
	PERM:     "operation not permitted",
	NOENT:    "no such cell",
	INVALID:  "invalid argument",
	EXIST:    "name already exists",
	BUSY:     "cpu-set busy",
	OOM:      "out of memory",
	TOO_BIG:  "argument too large",
	NOSYS:    "no such hypercall",
}

// Error satisfies the error interface so an Err_t can be wrapped or logged
// like any other Go error even though hypercall return paths use the raw
// signed value.
func (e Err_t) Error() string {
	if s, ok := errnames[e]; ok {
		return s
	}
	return fmt.Sprintf("err_t(%d)", int(e))
}

// Neg returns the hypercall-ABI encoding of e: 0 for success, -e otherwise.
func (e Err_t) Neg() int {
	if e == ESUCCESS {
		return 0
	}
	return -int(e)
}
