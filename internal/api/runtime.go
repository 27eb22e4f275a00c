package api

import (
	"github.com/mwhitlock/prism/internal/config"
	"github.com/mwhitlock/prism/internal/infrastructure"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	CDNBaseURL string
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Cache:     infra.Cache,
			Broker:    infra.Broker,
			Metrics:   infra.Metrics,
		},
		CDNBaseURL: cfg.API.CDNBaseURL,
	}
}
