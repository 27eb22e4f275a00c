package main

import (
	"encoding/json"
	"net/http"

	"github.com/mwhitlock/prism/internal/api"
	"github.com/mwhitlock/prism/internal/config"
	"github.com/mwhitlock/prism/internal/infrastructure"
	"github.com/mwhitlock/prism/internal/reconciler"
	"github.com/mwhitlock/prism/pkg/module"
)

type Modules struct {
	API        *module.Module
	Reconciler *reconciler.Reconciler
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, domain, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	rec := reconciler.New(domain.Images, infra.Broker, infra.Metrics, infra.Logger)

	return &Modules{
		API:        apiModule,
		Reconciler: rec,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	router.HandleNative("GET /metrics", infra.Metrics.Handler().ServeHTTP)

	return router
}
