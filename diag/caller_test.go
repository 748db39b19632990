package diag

import "testing"

func TestCallerStringNonEmpty(t *testing.T) {
	s := CallerString(0)
	if s == "" {
		t.Fatal("expected a non-empty call stack")
	}
}

func TestDistinctCallerFirstOnlyOnce(t *testing.T) {
	d := NewDistinctCaller()
	if !d.First("site-a") {
		t.Fatal("expected the first observation of site-a to report true")
	}
	if d.First("site-a") {
		t.Fatal("expected the second observation of site-a to report false")
	}
	if !d.First("site-b") {
		t.Fatal("a distinct key must report true independently")
	}
}
