// zyapi — aggregation gateway over third-party video resource APIs.
//
// Re-exposes maccms-style vod catalogs under one stable REST surface, with
// a persisted registry of upstream sources switchable per request.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zyvod/zyapi/internal/config"
	"github.com/zyvod/zyapi/internal/gateway"
	"github.com/zyvod/zyapi/internal/registry"
	"github.com/zyvod/zyapi/internal/server"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("error", err))
		os.Exit(1)
	}

	store, err := registry.Open(cfg.DBPath)
	if err != nil {
		slog.Error("registry open failed", slog.Any("error", err), slog.String("path", cfg.DBPath))
		os.Exit(1)
	}
	defer store.Close()

	dispatcher := gateway.NewDispatcher(store, cfg.UpstreamTimeout)
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.New(cfg, store, dispatcher).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("starting zyapi",
		slog.String("version", version),
		slog.String("addr", cfg.Addr()),
		slog.String("db", cfg.DBPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", slog.Any("error", err))
		}
	}
}
