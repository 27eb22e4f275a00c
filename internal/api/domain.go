package api

import (
	"github.com/mwhitlock/prism/internal/images"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Images images.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	imagesSystem := images.New(
		runtime.Database.Connection(),
		runtime.Broker,
		runtime.Cache,
		runtime.Metrics,
		runtime.Logger,
		runtime.CDNBaseURL,
	)

	return &Domain{
		Images: imagesSystem,
	}
}
