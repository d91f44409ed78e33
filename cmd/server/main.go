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
	redisv9 "github.com/redis/go-redis/v9"

	"rental_backend/internal/app/di"
	"rental_backend/internal/app/router"
	"rental_backend/internal/platform/config"
	platformhandler "rental_backend/internal/platform/http/handler"
	"rental_backend/internal/platform/logging"
	platformredis "rental_backend/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 設定（JWT_SECRET未設定などはここで起動失敗）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[FATAL] invalid configuration: %v", err)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel, cfg.IsProduction()))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	store, err := di.NewStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open credential store", "error", err)
		os.Exit(1)
	}
	slog.Info("credential store ready", "backend", store.Backend)

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running with in-memory login limiter.")
		} else {
			rdb = tmp
		}
	}

	auth, err := di.NewAuth(cfg, store.Users, rdb)
	if err != nil {
		slog.Error("failed to wire auth", "error", err)
		os.Exit(1)
	}

	deps := map[string]platformhandler.Pinger{"store": store}
	if rdb != nil {
		deps["redis"] = platformhandler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	health := platformhandler.NewHealthHandler(deps)

	// ルータ生成
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewRouter(auth, health, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}
	if err := store.Close(shutdownCtx); err != nil {
		slog.Error("failed to close credential store", "error", err)
	}
}
