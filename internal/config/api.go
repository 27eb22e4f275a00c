package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mwhitlock/prism/pkg/formatting"
	"github.com/mwhitlock/prism/pkg/middleware"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "PRISM_CORS_ENABLED",
	Origins:          "PRISM_CORS_ORIGINS",
	AllowedMethods:   "PRISM_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "PRISM_CORS_ALLOWED_HEADERS",
	AllowCredentials: "PRISM_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "PRISM_CORS_MAX_AGE",
}

// APIConfig holds API routing, CORS, upload, and storage URL settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CDNBaseURL    string                `toml:"cdn_base_url"`
	CORS          middleware.CORSConfig `toml:"cors"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 50 * 1024 * 1024 // 50MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.CDNBaseURL != "" {
		c.CDNBaseURL = overlay.CDNBaseURL
	}

	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "50MB"
	}
	if c.CDNBaseURL == "" {
		c.CDNBaseURL = "https://cdn.example.com"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("PRISM_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("PRISM_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv("PRISM_API_CDN_BASE_URL"); v != "" {
		c.CDNBaseURL = v
	}
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.CDNBaseURL, "http://") && !strings.HasPrefix(c.CDNBaseURL, "https://") {
		return fmt.Errorf("invalid cdn_base_url: %q", c.CDNBaseURL)
	}
	return nil
}
