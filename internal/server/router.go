package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"chat-relay-server/internal/auth"
	"chat-relay-server/internal/directory"
	"chat-relay-server/internal/handler"
	"chat-relay-server/internal/hub"
	"chat-relay-server/internal/metrics"
	"chat-relay-server/internal/middleware"
	"chat-relay-server/internal/store"
)

type Deps struct {
	Registry    *hub.Registry
	Engine      *hub.Engine
	Directory   directory.Directory
	Messages    store.MessageStore
	TokenConfig auth.TokenConfig
	Log         *slog.Logger
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	r.GET("/stats", func(c *gin.Context) {
		rooms, conns := deps.Registry.Counts()
		c.JSON(200, gin.H{"rooms": rooms, "connections": conns})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	joinLimiter := middleware.NewRateLimiter(30, time.Minute)
	wsHandler := &handler.WebSocketHandler{
		Registry:    deps.Registry,
		Engine:      deps.Engine,
		Directory:   deps.Directory,
		Messages:    deps.Messages,
		TokenConfig: deps.TokenConfig,
		JoinLimiter: joinLimiter,
		Log:         deps.Log,
	}
	r.GET("/ws/:room", wsHandler.Serve)

	roomsHandler := &handler.RoomsHandler{
		Registry:  deps.Registry,
		Engine:    deps.Engine,
		Directory: deps.Directory,
		Log:       deps.Log,
	}
	protected := r.Group("/v1")
	protected.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(60, time.Minute)))
	protected.Use(middleware.RequireAuth(deps.TokenConfig))
	protected.GET("/rooms/:room/members", roomsHandler.Members)
	protected.DELETE("/rooms/:room/members/:user", roomsHandler.RemoveMember)

	return r
}
