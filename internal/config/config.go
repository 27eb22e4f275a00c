package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mwhitlock/prism/pkg/broker"
	"github.com/mwhitlock/prism/pkg/cache"
	"github.com/mwhitlock/prism/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPrismEnv             = "PRISM_ENV"
	EnvPrismShutdownTimeout = "PRISM_SHUTDOWN_TIMEOUT"
	EnvPrismVersion         = "PRISM_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "PRISM_DB_HOST",
	Port:            "PRISM_DB_PORT",
	Name:            "PRISM_DB_NAME",
	User:            "PRISM_DB_USER",
	Password:        "PRISM_DB_PASSWORD",
	SSLMode:         "PRISM_DB_SSL_MODE",
	MaxOpenConns:    "PRISM_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "PRISM_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "PRISM_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "PRISM_DB_CONN_TIMEOUT",
}

var cacheEnv = &cache.Env{
	Addr:      "PRISM_CACHE_ADDR",
	Password:  "PRISM_CACHE_PASSWORD",
	DB:        "PRISM_CACHE_DB",
	KeyPrefix: "PRISM_CACHE_KEY_PREFIX",
	TTL:       "PRISM_CACHE_TTL",
}

var brokerEnv = &broker.Env{
	Brokers:      "PRISM_BROKER_ADDRS",
	JobsTopic:    "PRISM_BROKER_JOBS_TOPIC",
	ResultsTopic: "PRISM_BROKER_RESULTS_TOPIC",
	ErrorsTopic:  "PRISM_BROKER_ERRORS_TOPIC",
	GroupID:      "PRISM_BROKER_GROUP_ID",
}

// Config is the root configuration for the Prism service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Cache           cache.Config    `toml:"cache"`
	Broker          broker.Config   `toml:"broker"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the PRISM_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPrismEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Cache.Merge(&overlay.Cache)
	c.Broker.Merge(&overlay.Broker)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Broker.Finalize(brokerEnv); err != nil {
		return fmt.Errorf("broker: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPrismShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPrismVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvPrismEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
