package api

import (
	"net/http"

	"github.com/mwhitlock/prism/internal/config"
	"github.com/mwhitlock/prism/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Images.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
	)
}
