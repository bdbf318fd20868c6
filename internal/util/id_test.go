package util

import (
	"strings"
	"testing"
)

func TestNewIDPrefix(t *testing.T) {
	id := NewID("obj")
	if !strings.HasPrefix(id, "obj_") {
		t.Fatalf("expected obj_ prefix, got %q", id)
	}
	if len(id) != len("obj_")+20 {
		t.Fatalf("unexpected id length: %q", id)
	}
	if bare := NewID(""); strings.Contains(bare, "_") {
		t.Fatalf("bare id should have no separator, got %q", bare)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID("hist")
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
