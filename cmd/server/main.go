// Command tm-server serves the task REST API backed by in-memory state.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/and161185/taskmaster/internal/config"
	"github.com/and161185/taskmaster/internal/limiter"
	"github.com/and161185/taskmaster/internal/migrate"
	"github.com/and161185/taskmaster/internal/server/httpapi"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, optionally prepares Postgres, and starts the HTTP server.
func main() {
	cfg, err := config.ParseServer(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.Addr),
	)

	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scfg := httpapi.Config{
		SignKey:    []byte(cfg.JWTKey),
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		Logger:     logger,
	}

	// Login lockout survives restarts only with a database.
	if cfg.DSN != "" {
		if err := migrate.Up(ctx, cfg.DSN); err != nil {
			logger.Fatal("migrate up", zap.Error(err))
		}
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			logger.Fatal("pgxpool.New", zap.Error(err))
		}
		defer pool.Close()
		scfg.Limiter = limiter.NewPG(pool, limiter.DefaultPolicy)
	}
	if cfg.Dev {
		scfg.Mailer = httpapi.LogMailer{Log: logger}
	}

	app, err := httpapi.New(scfg)
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if cfg.TLSCert != "" {
			logger.Info("listening (TLS)", zap.String("addr", cfg.Addr))
			errCh <- srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
			return
		}
		logger.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("graceful shutdown", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	logger.Info("shutdown complete")
}
