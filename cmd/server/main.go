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
	"trip-planner-service/internal/api"
	"trip-planner-service/internal/config"
	"trip-planner-service/internal/platform/logging"
	"trip-planner-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (geocoder, router, caches, events) behind ports and starts the HTTP server.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := wire(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.Close()

	sessions := services.NewSessions(
		services.PlannerConfig{
			UnitCostPerKm: cfg.Cost.UnitPerKm,
			RouteTimeout:  providerOptions(cfg).MaxElapsed(),
		},
		deps.geocoder,
		deps.router,
		deps.events,
		cfg.Session.Max,
	)
	go pruneSessions(ctx, sessions, cfg.Session.IdleTTL)

	router := api.NewRouter(sessions, api.Options{AllowedOrigins: cfg.CORS.AllowedOrigins})

	// Write timeout covers cold-cache route computation including provider retries.
	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr,
			"geocode_provider", cfg.Geocode.Provider,
			"routing_provider", cfg.Routing.Provider,
			"cache_driver", cfg.Cache.Driver,
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// pruneSessions evicts idle sessions until ctx is cancelled.
func pruneSessions(ctx context.Context, sessions *services.Sessions, ttl time.Duration) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sessions.Prune(now, ttl)
		}
	}
}
