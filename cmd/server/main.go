package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/auth"
	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/config"
	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/httpapi"
	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/service"
	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	if cfg.DBDSN == "" {
		logger.Error("APP_DB_DSN is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("APP_JWT_SECRET is required")
		os.Exit(1)
	}

	pool, err := postgres.Open(context.Background(), cfg.DBDSN)
	if err != nil {
		logger.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	tokens := &auth.TokenService{Secret: []byte(cfg.JWTSecret)}

	loginSvc := &service.LoginService{
		Users:    postgres.NewUsersStore(pool),
		Attempts: postgres.NewAttemptsStore(pool),
		Configs:  postgres.NewConfigsStore(pool),
		Tokens:   tokens,
		Limiter:  service.NewAttemptLimiter(service.DefaultCoarseCap, service.DefaultCoarseWindow),
		Logger:   logger,
		TokenTTL: cfg.TokenTTL,
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger: logger,
		IsProd: cfg.IsProd(),
		DBPing: pool.Ping,
		Login:  loginSvc,
		Tokens: tokens,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
