// Package app assembles the records service: storage backend, seed data,
// routes, middleware and the HTTP server.
//
// STARTUP SEQUENCE (Run):
//  1. Open the configured storage backend
//  2. Load seed records into an empty store
//  3. Register all HTTP routes and wrap them in middleware
//  4. Start the HTTP server in a separate goroutine
//  5. Block until ctx is cancelled (SIGINT / SIGTERM in main)
//  6. Gracefully shut down: finish in-flight requests, close the store
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/records-api/internal/config"
	"github.com/aanand-mishra/records-api/internal/http/handlers/record"
	"github.com/aanand-mishra/records-api/internal/http/handlers/system"
	"github.com/aanand-mishra/records-api/internal/http/middleware"
	"github.com/aanand-mishra/records-api/internal/http/router"
	"github.com/aanand-mishra/records-api/internal/metrics"
	"github.com/aanand-mishra/records-api/internal/storage"
	"github.com/aanand-mishra/records-api/internal/storage/memory"
	"github.com/aanand-mishra/records-api/internal/storage/seed"
	"github.com/aanand-mishra/records-api/internal/storage/sqlite"
)

// Options tune NewHandler.
type Options struct {
	// Logger receives access logs. Nil means slog.Default().
	Logger *slog.Logger
	// Metrics, when non-nil, instruments every route and serves /metrics.
	Metrics *metrics.Metrics
}

// OpenStorage returns the backend selected by cfg.
func OpenStorage(cfg config.Storage) (storage.Storage, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return memory.New(), nil
	case config.BackendSQLite:
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("app.OpenStorage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("app.OpenStorage: unknown backend %q", cfg.Backend)
	}
}

// Seed loads the seed file (if any) into store and returns how many
// records were inserted.
func Seed(ctx context.Context, store storage.Storage, path string) (int, error) {
	if path == "" {
		return 0, nil
	}
	records, err := seed.Load(path)
	if err != nil {
		return 0, err
	}
	return seed.Apply(ctx, store, records)
}

// ─────────────────────────────────────────────────────────────────────────────
// NewHandler builds the complete HTTP handler around store.
//
// Route table:
//
//	GET    /                → welcome message + route table
//	GET    /healthz         → liveness
//	GET    /metrics         → Prometheus (only with Options.Metrics)
//	POST   /records         → create a record
//	GET    /records         → list all records
//	GET    /records/{id}    → get one record
//	PATCH  /records/{id}    → update a record's age
//	DELETE /records/{id}    → delete a record
//
// ─────────────────────────────────────────────────────────────────────────────
func NewHandler(store storage.Storage, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	rt := router.New()

	rt.HandleFunc(http.MethodGet, "/{$}", system.Index(rt))
	rt.HandleFunc(http.MethodGet, "/healthz", system.Health())

	rt.HandleFunc(http.MethodPost, "/records", record.New(store))
	rt.HandleFunc(http.MethodGet, "/records", record.GetList(store))
	rt.HandleFunc(http.MethodGet, "/records/{id}", record.GetByID(store))
	rt.HandleFunc(http.MethodPatch, "/records/{id}", record.Update(store))
	rt.HandleFunc(http.MethodDelete, "/records/{id}", record.Delete(store))

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.Logger(log),
	}
	if opts.Metrics != nil {
		rt.Handle(http.MethodGet, "/metrics", opts.Metrics.Handler())
		mws = append(mws, middleware.Metrics(opts.Metrics))
	}

	return middleware.Chain(rt, mws...)
}

// NewServer configures (but does not start) the HTTP server.
func NewServer(cfg config.HTTPServer, h http.Handler) *http.Server {
	return &http.Server{
		Addr:    cfg.Addr,
		Handler: h,

		// Timeouts keep slow clients from holding connections forever.
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Run serves the application described by cfg until ctx is cancelled,
// then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, err := OpenStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	log.Info("storage initialised",
		slog.String("backend", cfg.Storage.Backend),
		slog.String("path", cfg.Storage.Path))

	seeded, err := Seed(ctx, store, cfg.SeedPath)
	if err != nil {
		return err
	}
	if seeded > 0 {
		log.Info("seed records loaded",
			slog.Int("count", seeded),
			slog.String("path", cfg.SeedPath))
	}

	opts := Options{Logger: log}
	if !cfg.Metrics.Disabled {
		opts.Metrics = metrics.New(store.Count)
	}
	server := NewServer(cfg.HTTPServer, NewHandler(store, opts))

	// ListenAndServe blocks, so it runs in its own goroutine and reports
	// back through errCh; http.ErrServerClosed is the normal result of
	// Shutdown and is not an error.
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server encountered an error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, stopping server...")

	// Give in-flight requests ShutdownTimeout to finish. Shutdown stops
	// accepting connections first, then waits for active ones.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
