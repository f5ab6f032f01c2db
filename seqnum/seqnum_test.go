package seqnum

import (
	"testing"
)

func TestValueOrdering(t *testing.T) {
	if !Value(0).LessThan(1020) {
		t.Fatal("0 not below 1020")
	}
	if Value(1020).LessThan(1020) {
		t.Fatal("value below itself")
	}
	if !Value(-1).LessThan(0) {
		t.Fatal("sentinel -1 not below 0")
	}
}

func TestValueAddSize(t *testing.T) {
	if got := Value(1020).Add(960); got != 1980 {
		t.Fatalf("Add: got %d, want 1980", got)
	}
	if got := Value(1020).Size(1980); got != 960 {
		t.Fatalf("Size: got %d, want 960", got)
	}
	if !Value(1020).InRange(1020, 1980) {
		t.Fatal("first bound not in range")
	}
	if Value(1980).InRange(1020, 1980) {
		t.Fatal("last bound in range")
	}
}
