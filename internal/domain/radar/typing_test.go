package radar

import (
	"testing"

	"github.com/google/uuid"
)

func TestTypingSet(t *testing.T) {
	s := NewTypingSet()
	id := uuid.New()
	s.Add(id)
	s.Add(id)
	if !s.Has(id) || s.Len() != 1 {
		t.Fatalf("expected one typing entity")
	}
	s.Remove(id)
	if s.Has(id) {
		t.Fatalf("expected entity removed")
	}
	s.Add(uuid.New())
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected cleared set")
	}
}
