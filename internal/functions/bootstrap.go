package functions

import (
	"context"

	"toolshelf/internal/app"
	"toolshelf/internal/config"
	"toolshelf/internal/telemetry"
)

// Bootstrap builds handlers from the environment. The store connection is
// opened once per cold start and reused across invocations.
func Bootstrap(ctx context.Context) (*Handlers, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	cfg := config.Load()
	logger, err := telemetry.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(application.Ingester, application.Catalog, WithLogger(logger.Named("functions"))), nil
}
