package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/comitanigiacomo/kanso-streak-engine/docs"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/app"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/config"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
)

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config_invalid", zap.Error(err))
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		zap.NewExample().Fatal("logger_init_failed", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	if cfg.JWTSecret == "" {
		log.Warn("auth_disabled", zap.String("reason", "JWT_SECRET not set"))
	} else if cfg.OwnerPasswordHash == "" {
		log.Warn("owner_password_missing", zap.String("hint", "run streakctl hash-password and set OWNER_PASSWORD_HASH"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)

	log.Info("starting", zap.String("driver", cfg.DBDriver), zap.String("timezone", cfg.Timezone))

	a, err := app.New(context.WithoutCancel(ctx), cfg, log)
	if err != nil {
		log.Fatal("startup_failed", zap.Error(err))
	}

	if err := a.StartBackground(ctx); err != nil {
		_ = a.Close()
		log.Fatal("scheduler_start_failed", zap.Error(err))
	}

	// No write timeout: /habits/watch keeps the response open.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.Router(startTime),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		log.Info("server_listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server_failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server_forced_shutdown", zap.Error(err))
	}
	if err := a.Close(); err != nil {
		log.Error("shutdown_incomplete", zap.Error(err))
		os.Exit(1)
	}

	log.Info("shutdown_complete")
}
