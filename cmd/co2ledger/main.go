package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/co2ledger/internal/adapter/fsm"
	"github.com/neomorfeo/co2ledger/internal/adapter/memory"
	oteladapter "github.com/neomorfeo/co2ledger/internal/adapter/otel"
	riveradapter "github.com/neomorfeo/co2ledger/internal/adapter/river"
	"github.com/neomorfeo/co2ledger/internal/adapter/sqlstore"
	"github.com/neomorfeo/co2ledger/internal/app"
	"github.com/neomorfeo/co2ledger/internal/config"
	"github.com/neomorfeo/co2ledger/internal/domain"

	handler "github.com/neomorfeo/co2ledger/internal/adapter/http"
)

const (
	serviceName = "co2ledger"
	apiVersion  = "0.1.0"
)

func main() {
	if err := run(); err != nil {
		slog.Error("co2ledger stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	otelCfg, err := oteladapter.ConfigFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := newLogger(cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Telemetry ---
	providers, err := oteladapter.Setup(ctx, otelCfg)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	// --- Adapters (out) ---
	store, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := store.close(shutdownCtx); err != nil {
			logger.Error("storage shutdown failed", "error", err)
		}
	}()

	publisher, err := oteladapter.NewTracingPublisher(store.publisher)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	// --- Application ---
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	svc := app.NewLedgerService(
		oteladapter.NewTracingRepository(store.repo),
		publisher,
		fsm.New(),
		app.WithLocation(loc),
		app.WithPairingPolicy(cfg.Ledger.PairingPolicy),
		app.WithLookahead(cfg.Lookahead()),
		app.WithLogger(logger),
	)

	if _, err := svc.EnsureTank(ctx, cfg.Ledger.TankCapacityKg); err != nil {
		return fmt.Errorf("tank: %w", err)
	}

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))

	api := humachi.New(router, huma.DefaultConfig(serviceName, apiVersion))
	handler.Register(api, svc)

	// --- Server ---
	port := strconv.Itoa(cfg.Server.Port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("co2ledger listening",
			"port", port,
			"storage", cfg.DB.Driver,
			"docs", "http://localhost:"+port+"/docs",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-sigCtx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}

func newLogger(format string, w io.Writer) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, nil))
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

// backend bundles the ledger store with the event publisher that suits it.
type backend struct {
	repo      domain.Repository
	publisher domain.EventPublisher
	close     func(ctx context.Context) error
}

// openBackend opens the configured storage. River needs the SQLite store's
// database, so the other drivers log events inline instead.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		return &backend{
			repo:      memory.New(),
			publisher: riveradapter.NewLogPublisher(logger),
			close:     func(context.Context) error { return nil },
		}, nil

	case config.DriverPostgres:
		db, err := oteladapter.OpenDB(oteladapter.DriverPostgres, cfg.DB.URL)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		store, err := sqlstore.NewFromDB(db, sqlstore.DialectPostgres)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		return &backend{
			repo:      store,
			publisher: riveradapter.NewLogPublisher(logger),
			close:     func(context.Context) error { return store.Close() },
		}, nil
	}

	db, err := oteladapter.OpenDB(oteladapter.DriverSQLite, cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := sqlstore.ConfigureSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: %w", err)
	}
	store, err := sqlstore.NewFromDB(db, sqlstore.DialectSQLite)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("database: %w", err)
	}

	client, err := riveradapter.Setup(ctx, store.DB(), logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("river: %w", err)
	}
	if err := client.Start(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("river start: %w", err)
	}

	return &backend{
		repo:      store,
		publisher: riveradapter.NewPublisher(client),
		close: func(ctx context.Context) error {
			stopErr := client.Stop(ctx)
			return errors.Join(stopErr, store.Close())
		},
	}, nil
}
