package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-relay-server/internal/model"
)

// MessageStore durably records a message and returns its identity.
// Durability and delivery are independent outcomes: broadcast proceeds
// whether or not Persist succeeded, and a Persist error is reported to the
// sender distinctly.
type MessageStore interface {
	Persist(ctx context.Context, room int64, sender string, receiver *string, content string) (string, error)
}

// Memory keeps messages in per-room slices. Used in tests and when no
// database is configured.
type Memory struct {
	mu     sync.RWMutex
	byRoom map[int64][]model.Message
}

func NewMemory() *Memory {
	return &Memory{byRoom: make(map[int64][]model.Message)}
}

func (m *Memory) Persist(_ context.Context, room int64, sender string, receiver *string, content string) (string, error) {
	msg := model.Message{
		ID:         uuid.NewString(),
		RoomID:     room,
		SenderID:   sender,
		ReceiverID: receiver,
		Content:    content,
		CreatedAt:  time.Now().UnixMilli(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.byRoom[room] = append(m.byRoom[room], msg)
	return msg.ID, nil
}

// Recent returns up to limit of the newest messages for room, oldest first.
func (m *Memory) Recent(room int64, limit int) []model.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := m.byRoom[room]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}
