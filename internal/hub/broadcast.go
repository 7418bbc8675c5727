package hub

import (
	"context"
	"errors"
	"log/slog"

	"chat-relay-server/internal/metrics"
	"chat-relay-server/internal/protocol"
)

var ErrNotConnected = errors.New("user not connected")

// Engine fans inbound message events out to room members. Recipient lists
// are resolved from the registry, then writes happen with no lock held;
// each write is bounded by the connection's write deadline, so one stuck
// recipient costs at most that deadline before being dropped.
type Engine struct {
	reg *Registry
	bus *RedisBus
	log *slog.Logger
}

func NewEngine(reg *Registry, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{reg: reg, log: log}
}

// AttachBus enables cross-instance fan-out. Call before Run.
func (e *Engine) AttachBus(bus *RedisBus) { e.bus = bus }

// Run forwards bus deliveries from other instances to local members. It
// blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	if e.bus == nil {
		<-ctx.Done()
		return
	}
	e.bus.Subscribe(ctx, func(room int64, payload []byte) {
		e.fanOut(room, payload)
	})
}

// BroadcastAll delivers content to every member of room, the sender
// included: the sender's client renders its own message only through this
// echo. Delivery is best effort per recipient.
func (e *Engine) BroadcastAll(room int64, sender, content string) (delivered, failed int) {
	payload := protocol.EncodeDelivery(sender, content)
	if e.bus != nil {
		if err := e.bus.Publish(context.Background(), room, payload); err != nil {
			e.log.Warn("bus publish failed", "room", room, "err", err)
		}
	}
	metrics.MessagesBroadcast.Inc()
	return e.fanOut(room, payload)
}

// BroadcastDirected delivers content to one member of room.
func (e *Engine) BroadcastDirected(room int64, sender, receiver, content string) error {
	conn, ok := e.reg.Get(room, receiver)
	if !ok {
		return ErrNotConnected
	}
	if err := conn.Send(protocol.EncodeDelivery(sender, content)); err != nil {
		e.disconnect(conn, err)
		return err
	}
	metrics.Deliveries.Inc()
	return nil
}

// Remove pushes a removal notice to (room, user), closes the channel, and
// deregisters the connection. Notice delivery is best effort; removal
// proceeds regardless.
func (e *Engine) Remove(room int64, user, notice string) error {
	conn, ok := e.reg.Get(room, user)
	if !ok {
		return ErrNotConnected
	}
	if err := conn.Send(protocol.EncodeRemoval(notice)); err != nil {
		e.log.Warn("removal notice not delivered", "room", room, "user", user, "err", err)
	}
	_ = conn.Close()
	e.reg.Drop(conn)
	e.log.Info("member removed", "room", room, "user", user)
	return nil
}

func (e *Engine) fanOut(room int64, payload []byte) (delivered, failed int) {
	for _, conn := range e.reg.All(room) {
		if err := conn.Send(payload); err != nil {
			e.disconnect(conn, err)
			failed++
			continue
		}
		metrics.Deliveries.Inc()
		delivered++
	}
	return delivered, failed
}

// disconnect runs the implicit-disconnect path for a failed recipient:
// same cleanup as a client-initiated disconnect, isolated from the rest
// of the fan-out.
func (e *Engine) disconnect(conn *Connection, err error) {
	metrics.DeliveryFailures.Inc()
	e.reg.Drop(conn)
	_ = conn.Close()
	e.log.Warn("delivery failed, dropping connection", "room", conn.Room, "user", conn.User, "err", err)
}
