// Package app wires configuration, the selected store backend and the
// ingestion and query services into one value shared by every binary.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"toolshelf/internal/catalog"
	"toolshelf/internal/config"
	"toolshelf/internal/db"
	"toolshelf/internal/ingest"
	"toolshelf/internal/memstore"
	"toolshelf/internal/mongostore"
	"toolshelf/internal/telemetry"
	"toolshelf/internal/tools"
)

type App struct {
	Config   config.Config
	Logger   *zap.Logger
	Backend  string
	Store    tools.Store
	Ingester *ingest.Ingester
	Catalog  *catalog.Service
	Metrics  *prometheus.Registry

	closers []func(context.Context) error
}

// New opens the configured backend and builds the services on top of it.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Backend: backend,
		Metrics: telemetry.NewMetricsRegistry(),
	}
	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	if cfg.AdminSecret == "" {
		logger.Warn("ADMIN_SECRET is not set; every upload will be rejected")
	}

	a.Ingester = ingest.New(a.Store,
		ingest.WithSecret(cfg.AdminSecret),
		ingest.WithLogger(logger.Named("ingest")),
		ingest.WithObserver(telemetry.NewIngestMetrics(a.Metrics)),
	)
	a.Catalog = catalog.New(a.Store, cfg.ToolsPerPage)
	logger.Info("store ready", zap.String("backend", backend))
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config
	switch a.Backend {
	case config.BackendMongo:
		client, err := mongostore.Connect(ctx,
			mongostore.WithURI(cfg.MongoURI),
			mongostore.WithDatabase(cfg.MongoDatabase),
			mongostore.WithCollection(cfg.MongoCollection),
			mongostore.WithQueryTimeout(cfg.StoreQueryTimeout()),
		)
		if err != nil {
			return fmt.Errorf("connect mongodb: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(ctx)
			return fmt.Errorf("ensure indexes: %w", err)
		}
		a.Store = mongostore.NewStore(client)
	case config.BackendPostgres:
		conn, err := db.Open(cfg.DatabaseURL, db.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return db.Close(conn) })
		if err := db.Migrate(conn, a.Logger); err != nil {
			_ = db.Close(conn)
			return fmt.Errorf("migrate: %w", err)
		}
		a.Store = db.NewToolStore(conn, cfg.StoreQueryTimeout())
	default:
		a.Store = memstore.New()
	}
	return nil
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
