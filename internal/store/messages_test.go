package store

import (
	"context"
	"testing"
)

func TestMemory_Persist(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id1, err := m.Persist(ctx, 7, "A", nil, "hi")
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	id2, err := m.Persist(ctx, 7, "B", nil, "yo")
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Fatalf("expected distinct non-empty IDs, got %q and %q", id1, id2)
	}

	msgs := m.Recent(7, 10)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "hi" || msgs[1].Content != "yo" {
		t.Fatalf("expected oldest-first order, got %+v", msgs)
	}
}

func TestMemory_RecentLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := m.Persist(ctx, 7, "A", nil, "m"); err != nil {
			t.Fatalf("Persist: %v", err)
		}
	}

	if got := len(m.Recent(7, 3)); got != 3 {
		t.Fatalf("expected 3 messages, got %d", got)
	}
	if got := len(m.Recent(9, 3)); got != 0 {
		t.Fatalf("expected empty room to have no messages, got %d", got)
	}
}

func TestMemory_DirectedReceiver(t *testing.T) {
	m := NewMemory()
	receiver := "B"
	if _, err := m.Persist(context.Background(), 7, "A", &receiver, "psst"); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	msgs := m.Recent(7, 1)
	if len(msgs) != 1 || msgs[0].ReceiverID == nil || *msgs[0].ReceiverID != "B" {
		t.Fatalf("expected receiver B recorded, got %+v", msgs)
	}
}
