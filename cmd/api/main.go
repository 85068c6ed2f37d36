// Package main is the entry point for the Reactivities API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/reactivities/backend/internal/config"
	"github.com/pkordes/reactivities/backend/internal/handler"
	"github.com/pkordes/reactivities/backend/internal/mapper"
	"github.com/pkordes/reactivities/backend/internal/mediator"
	"github.com/pkordes/reactivities/backend/internal/middleware"
	"github.com/pkordes/reactivities/backend/internal/observability"
	"github.com/pkordes/reactivities/backend/internal/repo"
	"github.com/pkordes/reactivities/backend/internal/seed"
	"github.com/pkordes/reactivities/backend/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// --- Storage ----------------------------------------------------------
	startup, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := repo.Open(startup, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("storage connection established")

	if cfg.MigrateOnStartup {
		if err := store.Migrate(startup); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}
	if cfg.SeedOnStartup {
		n, err := seed.Activities(startup, store, time.Now())
		if err != nil {
			return err
		}
		logger.Info("seed complete", "inserted", n)
	}

	// --- Dispatcher -------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	dispatcher, err := newDispatcher(store, logger, observability.NewMetrics(reg))
	if err != nil {
		return err
	}

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, logger, dispatcher, reg),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-stop:
	}
	logger.Info("shutting down server")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// newDispatcher builds the mapper, the handler registry and the dispatcher.
// Any missing handler or mapping fails here, before the server starts.
func newDispatcher(store mediator.Beginner, logger *slog.Logger, metrics *observability.Metrics) (*mediator.Dispatcher, error) {
	m, err := mapper.New(service.ActivityProfile)
	if err != nil {
		return nil, err
	}
	handlers, err := service.NewHandlers(m)
	if err != nil {
		return nil, err
	}
	return mediator.New(store, handlers, mediator.WithLogger(logger), mediator.WithMetrics(metrics))
}

// newRouter assembles the middleware chain and mounts every route.
//
// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer →
// CORS → body limit. Recoverer catches panics and returns HTTP 500 instead of
// crashing; CORS runs before the body limit so preflights are never rejected.
func newRouter(cfg config.Config, logger *slog.Logger, sender mediator.Sender, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	handler.NewServer(sender, logger).Routes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}
