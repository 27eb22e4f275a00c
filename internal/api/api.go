// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/mwhitlock/prism/internal/config"
	"github.com/mwhitlock/prism/internal/infrastructure"
	"github.com/mwhitlock/prism/pkg/middleware"
	"github.com/mwhitlock/prism/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The assembled Domain is returned alongside the module so the reconciler can
// share the same domain systems.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))

	return m, domain, nil
}
