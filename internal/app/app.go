// Package app wires the application container: configuration, logging,
// dataset loading, the HTTP router and graceful server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fipulse/internal/config"
	"fipulse/internal/dataset"
	"fipulse/internal/infrastructure"
	transport "fipulse/internal/transport/http"
)

// Version is the application version, overridable at build time.
var Version = "dev"

// Application is the dependency container for the API server.
type Application struct {
	Config  *config.Config
	Store   *dataset.Store
	Router  *chi.Mux
	Server  *http.Server
	Metrics *transport.Metrics
	Logger  *slog.Logger
}

// NewApplication loads the dataset and assembles the server.
func NewApplication(ctx context.Context, cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("unified_file", cfg.Paths.UnifiedFile))

	store, err := dataset.NewLoader(logger).Load(ctx, cfg.Paths.UnifiedFile, cfg.Paths.RefCodesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Store:   store,
		Metrics: transport.NewMetrics(),
		Logger:  logger,
	}
	app.Metrics.SetDatasetRecords(
		len(store.Observations()) + len(store.Events()) + len(store.ImpactLinks()))

	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (a *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(transport.RequestLogger(a.Logger))
	r.Use(a.Metrics.Instrument)

	r.Route("/api", func(r chi.Router) {
		r.Use(transport.RateLimit(a.Config.HTTP.RateLimitRPS, a.Config.HTTP.RateLimitBurst))
		r.Mount("/", transport.NewDashboardHandler(a.Store, a.Logger).Routes())
	})

	r.Method(http.MethodGet, "/healthz", transport.NewHealthHandler(a.Store, Version))
	r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())

	return r
}

// Run starts the server and blocks until SIGINT/SIGTERM or server failure,
// then shuts down gracefully within the configured timeout.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		a.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	return a.Shutdown()
}

// Shutdown stops the server gracefully and closes the log file.
func (a *Application) Shutdown() error {
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	a.Logger.Info("server stopped")
	return infrastructure.CloseLogFile()
}
