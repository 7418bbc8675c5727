package hub

import (
	"log/slog"
	"testing"

	json "github.com/goccy/go-json"
)

func TestRedisBus_DecodeFiltersOwnOrigin(t *testing.T) {
	b := &RedisBus{origin: "me", log: slog.Default()}

	own, _ := json.Marshal(BusMessage{Room: 7, Origin: "me", Payload: []byte("x")})
	if _, ok := b.decode(own); ok {
		t.Fatalf("expected own publish to be filtered")
	}

	other, _ := json.Marshal(BusMessage{Room: 7, Origin: "peer", Payload: []byte("x")})
	bm, ok := b.decode(other)
	if !ok {
		t.Fatalf("expected peer publish to pass the filter")
	}
	if bm.Room != 7 || string(bm.Payload) != "x" {
		t.Fatalf("unexpected bus message %+v", bm)
	}
}

func TestRedisBus_DecodeAcceptsRoomZero(t *testing.T) {
	b := &RedisBus{origin: "me", log: slog.Default()}

	raw, _ := json.Marshal(BusMessage{Room: 0, Origin: "peer", Payload: []byte("x")})
	bm, ok := b.decode(raw)
	if !ok {
		t.Fatalf("expected room 0 to be a valid room id")
	}
	if bm.Room != 0 || string(bm.Payload) != "x" {
		t.Fatalf("unexpected bus message %+v", bm)
	}
}

func TestRedisBus_DecodeRejectsGarbage(t *testing.T) {
	b := &RedisBus{origin: "me", log: slog.Default()}
	if _, ok := b.decode([]byte("not json")); ok {
		t.Fatalf("expected malformed envelope to be rejected")
	}
	if _, ok := b.decode([]byte(`{"origin":"peer"}`)); ok {
		t.Fatalf("expected envelope without a room to be rejected")
	}
}

func TestChannelName(t *testing.T) {
	if got := channel(7); got != "room:7" {
		t.Fatalf("expected room:7, got %q", got)
	}
}
