package hub

import (
	"context"
	"fmt"
	"log/slog"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// BusMessage is the envelope published per broadcast. Origin identifies the
// publishing instance: redis pub/sub echoes to the publisher's own
// subscription, so subscribers skip their own messages to avoid delivering
// twice locally.
type BusMessage struct {
	Room    int64  `json:"room"`
	Origin  string `json:"origin"`
	Payload []byte `json:"payload"`
}

// RedisBus relays room broadcasts between relay instances.
type RedisBus struct {
	rdb    *redis.Client
	origin string
	log    *slog.Logger
}

func NewRedisBus(ctx context.Context, addr string, db int, log *slog.Logger) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisBus{rdb: rdb, origin: uuid.NewString(), log: log}, nil
}

func (b *RedisBus) Publish(ctx context.Context, room int64, payload []byte) error {
	raw, _ := json.Marshal(BusMessage{Room: room, Origin: b.origin, Payload: payload})
	return b.rdb.Publish(ctx, channel(room), raw).Err()
}

// Subscribe listens on all room channels and invokes fn for every message
// published by another instance. Blocks until ctx is cancelled.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(room int64, payload []byte)) {
	pubsub := b.rdb.PSubscribe(ctx, "room:*")
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg := <-ch:
			if bm, ok := b.decode([]byte(msg.Payload)); ok {
				fn(bm.Room, bm.Payload)
			}
		}
	}
}

func (b *RedisBus) Close() { _ = b.rdb.Close() }

// decode parses an envelope and filters out our own publishes. The room
// field is decoded through a pointer so an envelope that omits it is
// rejected; room ids are opaque and 0 is as valid as any other.
func (b *RedisBus) decode(raw []byte) (BusMessage, bool) {
	var env struct {
		Room    *int64 `json:"room"`
		Origin  string `json:"origin"`
		Payload []byte `json:"payload"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		b.log.Warn("bad bus message", "err", err)
		return BusMessage{}, false
	}
	if env.Room == nil || env.Origin == b.origin {
		return BusMessage{}, false
	}
	return BusMessage{Room: *env.Room, Origin: env.Origin, Payload: env.Payload}, true
}

func channel(room int64) string { return fmt.Sprintf("room:%d", room) }
