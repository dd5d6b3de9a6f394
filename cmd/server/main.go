package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/exp/slog"

	"tripkeeper/internal/app/server/api"
	"tripkeeper/internal/app/server/config"
	"tripkeeper/internal/infrastructure/migration"
	"tripkeeper/internal/infrastructure/storage/postgres"
	"tripkeeper/internal/utils/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migration.NewMigration(cfg, migration.DefaultEngine).Up(); err != nil {
		return err
	}
	log.Info("migrations applied", "path", cfg.DB.Migrations)

	storage, err := postgres.New(ctx, cfg.DB.DatabaseURI)
	if err != nil {
		return err
	}
	defer storage.Close()

	server := &http.Server{
		Addr:    cfg.Server.RunAddress,
		Handler: api.New(storage, log),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", cfg.Server.RunAddress, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
