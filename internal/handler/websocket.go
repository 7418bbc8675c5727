package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chat-relay-server/internal/auth"
	"chat-relay-server/internal/directory"
	"chat-relay-server/internal/hub"
	"chat-relay-server/internal/metrics"
	"chat-relay-server/internal/middleware"
	"chat-relay-server/internal/protocol"
	"chat-relay-server/internal/store"
)

// WebSocketHandler runs the session lifecycle for one connection:
// authenticate, join the registry, pump inbound frames into the broadcast
// engine, and tear the registry entry down on any exit path.
type WebSocketHandler struct {
	Registry    *hub.Registry
	Engine      *hub.Engine
	Directory   directory.Directory
	Messages    store.MessageStore
	TokenConfig auth.TokenConfig
	JoinLimiter *middleware.RateLimiter
	Log         *slog.Logger
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsWriter struct {
	conn *websocket.Conn
}

func (w *wsWriter) Write(message []byte) error {
	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteMessage(websocket.TextMessage, message)
}

func (w *wsWriter) Close() error {
	return w.conn.Close()
}

func (h *WebSocketHandler) Serve(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	claims, err := auth.VerifyToken(tokenString, h.TokenConfig)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	user := claims.UserID

	room, err := strconv.ParseInt(c.Param("room"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room"})
		return
	}

	if h.JoinLimiter != nil && !h.JoinLimiter.Allow(c.ClientIP()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
		return
	}

	member, err := h.Directory.IsMember(c.Request.Context(), room, user)
	if err != nil {
		h.Log.Error("directory lookup failed", "room", room, "user", user, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Membership check failed"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a member of this room"})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	conn := hub.NewConnection(room, user, &wsWriter{conn: ws})
	if prev := h.Registry.Join(room, user, conn); prev != nil {
		// Last join wins; the displaced channel must not keep receiving.
		_ = prev.Close()
		h.Log.Info("duplicate identity displaced", "room", room, "user", user)
	}
	metrics.ConnectionsActive.Inc()
	h.Log.Info("joined", "room", room, "user", user)

	defer func() {
		// Exactly one deregistration per connection. A replaced connection
		// skips Drop: the registry entry now belongs to its successor.
		if !conn.Replaced() {
			h.Registry.Drop(conn)
		}
		_ = conn.Close()
		metrics.ConnectionsActive.Dec()
		h.Log.Info("left", "room", room, "user", user)
	}()

	ws.SetReadLimit(1024 * 1024)
	const pongWait = 60 * time.Second
	const writeWait = 10 * time.Second
	pingPeriod := (pongWait * 9) / 10

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() {
		closeOnce.Do(func() {
			close(done)
		})
	}
	defer closeDone()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(writeWait)
				if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					_ = ws.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}

		in, err := protocol.DecodeInbound(data)
		if err != nil {
			// Protocol errors cost the frame, never the session.
			h.Log.Debug("ignoring bad frame", "room", room, "user", user, "err", err)
			continue
		}

		if _, err := h.Messages.Persist(c.Request.Context(), room, user, nil, in.Content); err != nil {
			// Durability and delivery are independent outcomes: tell the
			// sender, then broadcast anyway.
			h.Log.Error("persist failed", "room", room, "user", user, "err", err)
			_ = conn.Send(protocol.EncodeError("message not persisted"))
		}

		h.Engine.BroadcastAll(room, user, in.Content)
	}
}
