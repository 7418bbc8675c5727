package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"chat-relay-server/internal/auth"
	"chat-relay-server/internal/config"
	"chat-relay-server/internal/directory"
	"chat-relay-server/internal/hub"
	"chat-relay-server/internal/server"
	"chat-relay-server/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	logger := newLogger(cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var dir directory.Directory
	var messages store.MessageStore
	if cfg.PGURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PGURL)
		if err != nil {
			log.Fatal(err)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			log.Fatal(err)
		}
		dir = directory.NewPostgres(pool)
		messages = store.NewPostgres(pool)
	} else {
		logger.Warn("PG_URL not set, using in-memory directory and message store")
		mem := directory.NewMemory()
		mem.AllowAll()
		dir = mem
		messages = store.NewMemory()
	}

	registry := hub.NewRegistry()
	engine := hub.NewEngine(registry, logger)
	if cfg.RedisAddr != "" {
		bus, err := hub.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisDB, logger)
		if err != nil {
			log.Fatal(err)
		}
		defer bus.Close()
		engine.AttachBus(bus)
		logger.Info("cross-instance bus enabled", "addr", cfg.RedisAddr)
	}
	go engine.Run(ctx)

	tokenCfg := auth.TokenConfig{
		Secret: cfg.MasterSecret,
		Expiry: cfg.TokenExpiry,
		Issuer: "chat-relay-server",
	}

	router := server.NewRouter(server.Deps{
		Registry:    registry,
		Engine:      engine,
		Directory:   dir,
		Messages:    messages,
		TokenConfig: tokenCfg,
		Log:         logger,
	})

	srv := server.NewHTTPServer(cfg, router)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := server.Serve(srv, cfg); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}
