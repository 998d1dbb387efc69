package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/josh-kwaku/grey-ledger/internal/backend"
	"github.com/josh-kwaku/grey-ledger/internal/config"
	"github.com/josh-kwaku/grey-ledger/internal/handler"
	"github.com/josh-kwaku/grey-ledger/internal/ledger"
	"github.com/josh-kwaku/grey-ledger/internal/logging"
	"github.com/josh-kwaku/grey-ledger/internal/middleware"
	"github.com/josh-kwaku/grey-ledger/internal/notify"
	"github.com/josh-kwaku/grey-ledger/internal/seed"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("ledger-api", cfg.LogLevel, cfg.AppEnv)

	if err := run(cfg, logger); err != nil {
		logger.Error("ledger api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	dataset, err := seed.Default()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	stores, err := backend.Open(ctx, cfg, dataset.Clients)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Error("failed to close stores", "error", err)
		}
	}()

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	opts, err := cfg.LedgerOptions()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	opts.Seed = dataset.Transactions

	svc := ledger.NewService(stores.Balances, notifier, stores.Snapshot, opts)

	// Reads answer 503 until this finishes; a failure is only visible through
	// readiness and the API.
	go func() {
		if err := svc.Load(ctx); err != nil {
			logger.Error("ledger load failed", "error", err)
		}
	}()

	mux := handler.Routes(handler.Handlers{
		Health:       handler.NewHealthHandler(svc, version),
		Transactions: handler.NewTransactionHandler(svc),
		Accounts:     handler.NewAccountHandler(stores.Balances),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           middleware.Chain(mux, middleware.Tracing, middleware.Logging(logger), middleware.Recovery),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "addr", addr, "snapshot_backend", cfg.SnapshotBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run: listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("run: shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func buildNotifier(cfg *config.Config) (ledger.Notifier, error) {
	if cfg.DiscordBotToken == "" {
		return notify.Log{}, nil
	}
	discord, err := notify.NewDiscord(cfg.DiscordBotToken, cfg.DiscordChannelID)
	if err != nil {
		return nil, fmt.Errorf("buildNotifier: %w", err)
	}
	return notify.Multi{notify.Log{}, discord}, nil
}
