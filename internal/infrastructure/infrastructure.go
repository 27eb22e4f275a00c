// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, cache, broker, metrics)
// that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mwhitlock/prism/internal/config"
	"github.com/mwhitlock/prism/pkg/broker"
	"github.com/mwhitlock/prism/pkg/cache"
	"github.com/mwhitlock/prism/pkg/database"
	"github.com/mwhitlock/prism/pkg/lifecycle"
	"github.com/mwhitlock/prism/pkg/metrics"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, the result cache, the job channel, and metrics.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Cache     cache.System
	Broker    broker.System
	Metrics   metrics.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Cache:     cache.New(&cfg.Cache, logger),
		Broker:    broker.New(&cfg.Broker, logger),
		Metrics:   metrics.New(),
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	if err := i.Broker.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("broker start failed: %w", err)
	}
	return nil
}
