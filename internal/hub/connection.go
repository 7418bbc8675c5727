package hub

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrClosed = errors.New("connection closed")

type Writer interface {
	Write(message []byte) error
	Close() error
}

// Connection binds one live channel to one user in one room. The session
// that created it owns it and is responsible for closing it; the registry
// only holds a lookup reference.
type Connection struct {
	Room int64
	User string

	writer Writer

	mu       sync.Mutex // single writer per outbound channel
	closed   atomic.Bool
	replaced atomic.Bool
}

func NewConnection(room int64, user string, w Writer) *Connection {
	return &Connection{Room: room, User: user, writer: w}
}

func (c *Connection) Send(payload []byte) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writer.Write(payload)
}

// Close is idempotent; concurrent exit paths may both reach it.
func (c *Connection) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.writer.Close()
}

func (c *Connection) Closed() bool { return c.closed.Load() }

// Replaced reports whether a later join for the same (room, user) displaced
// this connection. A displaced session must not deregister its successor.
func (c *Connection) Replaced() bool { return c.replaced.Load() }

func (c *Connection) markReplaced() { c.replaced.Store(true) }
