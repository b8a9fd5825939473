package radar

import (
	"testing"

	"github.com/google/uuid"
)

func TestAgentSnapshot_Label(t *testing.T) {
	a := AgentSnapshot{ID: uuid.New(), Name: "Ada Lovelace", DistanceText: "4.2"}
	if a.Label() != "Ada Lovelace" {
		t.Fatalf("unexpected plain label %q", a.Label())
	}
	a.IsTyping = true
	a.IsMuted = true
	if a.Label() != "(typing) Ada Lovelace (muted)" {
		t.Fatalf("unexpected decorated label %q", a.Label())
	}
	if r := a.Row(); r.Distance != "4.2m" || r.ID != a.ID {
		t.Fatalf("unexpected row %+v", r)
	}
}
