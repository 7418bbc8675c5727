package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chat-relay-server/internal/directory"
	"chat-relay-server/internal/hub"
	"chat-relay-server/internal/middleware"
)

const removalNotice = "You have been removed from this room by an administrator"

// RoomsHandler exposes presence and the administrative removal path. A
// removal is an out-of-band event, not a frame on the room stream.
type RoomsHandler struct {
	Registry  *hub.Registry
	Engine    *hub.Engine
	Directory directory.Directory
	Log       *slog.Logger
}

func parseRoom(c *gin.Context) (int64, bool) {
	room, err := strconv.ParseInt(c.Param("room"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room"})
		return 0, false
	}
	return room, true
}

// Members returns the identities currently connected to the room.
func (h *RoomsHandler) Members(c *gin.Context) {
	room, ok := parseRoom(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": h.Registry.Members(room)})
}

// RemoveMember forcibly disconnects a member. The target receives a
// removal notice before its channel is closed; non-admin requesters are
// rejected before any registry mutation.
func (h *RoomsHandler) RemoveMember(c *gin.Context) {
	requester, ok := middleware.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		return
	}
	room, ok := parseRoom(c)
	if !ok {
		return
	}
	target := c.Param("user")

	admin, err := h.Directory.IsAdmin(c.Request.Context(), room, requester)
	if err != nil {
		h.Log.Error("directory lookup failed", "room", room, "user", requester, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Admin check failed"})
		return
	}
	if !admin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
		return
	}

	if err := h.Engine.Remove(room, target, removalNotice); err != nil {
		if errors.Is(err, hub.ErrNotConnected) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not connected"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Removal failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": target})
}
