// Package diag provides call-stack diagnostics for the panic paths of
// spec.md §4.G, adapted from biscuit/src/caller's Callerdump and
// Distinct_caller_t.
package diag

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// CallerString renders the call stack starting at `skip` frames above the
// caller of CallerString itself, one frame per line.
func CallerString(skip int) string {
	var b strings.Builder
	for i := skip + 1; ; i++ {
		_, f, l, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\t<-")
		}
		fmt.Fprintf(&b, "%s:%d", f, l)
	}
	return b.String()
}

// DistinctCaller tracks whether a given call-site key has been seen
// before, used by panic_stop to avoid flooding ringlog with
// repeated entries from the same faulting site.
type DistinctCaller struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewDistinctCaller constructs an empty tracker.
func NewDistinctCaller() *DistinctCaller {
	return &DistinctCaller{seen: make(map[string]bool)}
}

// First reports whether this is the first time key has been observed,
// recording it if so.
func (d *DistinctCaller) First(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	return true
}
