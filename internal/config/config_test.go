package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mwhitlock/prism/internal/config"
)

const baseConfig = `shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "15m"
shutdown_timeout = "30s"

[database]
host = "localhost"
port = 5432
name = "prism"
user = "prism"
password = "prism"
ssl_mode = "disable"

[cache]
addr = "localhost:6379"
key_prefix = "image:"
ttl = "1h"

[broker]
brokers = ["localhost:9092"]
jobs_topic = "image-processing-jobs"
results_topic = "image-classification-results"
errors_topic = "image-processing-errors"
group_id = "prism-images"

[api]
base_path = "/api"
max_upload_size = "50MB"
cdn_base_url = "https://cdn.example.com"

[api.cors]
enabled = false
`

const overlayConfig = `[server]
port = 9090

[database]
host = "prodhost"

[cache]
ttl = "30m"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("db host: got %s, want localhost", cfg.Database.Host)
	}
	if cfg.Cache.KeyPrefix != "image:" {
		t.Errorf("cache key_prefix: got %s, want image:", cfg.Cache.KeyPrefix)
	}
	if cfg.Broker.JobsTopic != "image-processing-jobs" {
		t.Errorf("jobs topic: got %s, want image-processing-jobs", cfg.Broker.JobsTopic)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("api base_path: got %s, want /api", cfg.API.BasePath)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	chdir(t, dir)

	t.Setenv("PRISM_ENV", "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 (from overlay)", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("db host: got %s, want prodhost (from overlay)", cfg.Database.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("db port: got %d, want 5432 (from base)", cfg.Database.Port)
	}
	if cfg.Cache.TTL != "30m" {
		t.Errorf("cache ttl: got %s, want 30m (from overlay)", cfg.Cache.TTL)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	t.Setenv("PRISM_VERSION", "2.0.0")
	t.Setenv("PRISM_SERVER_PORT", "3000")
	t.Setenv("PRISM_BROKER_GROUP_ID", "prism-staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s, want 2.0.0", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d, want 3000", cfg.Server.Port)
	}
	if cfg.Broker.GroupID != "prism-staging" {
		t.Errorf("broker group: got %s, want prism-staging", cfg.Broker.GroupID)
	}
}

func TestLoadNoConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	t.Setenv("PRISM_DB_NAME", "testdb")
	t.Setenv("PRISM_DB_USER", "testuser")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load without config.toml failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("db name from env: got %s, want testdb", cfg.Database.Name)
	}
	if cfg.Cache.Addr != "localhost:6379" {
		t.Errorf("cache addr default: got %s, want localhost:6379", cfg.Cache.Addr)
	}
	if cfg.Broker.GroupID != "prism-images" {
		t.Errorf("broker group default: got %s, want prism-images", cfg.Broker.GroupID)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `shutdown_timeout = [broken`)
	chdir(t, dir)

	_, err := config.Load()
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestEnvDefault(t *testing.T) {
	cfg := &config.Config{}
	if got := cfg.Env(); got != "local" {
		t.Errorf("env: got %s, want local", got)
	}

	t.Setenv("PRISM_ENV", "production")
	if got := cfg.Env(); got != "production" {
		t.Errorf("env: got %s, want production", got)
	}
}

func TestMaxUploadSizeBytes(t *testing.T) {
	tests := []struct {
		name string
		size string
		want int64
	}{
		{"default 50MB", "50MB", 50 * 1024 * 1024},
		{"explicit 10MB", "10MB", 10 * 1024 * 1024},
		{"unparseable falls back", "a lot", 50 * 1024 * 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.APIConfig{MaxUploadSize: tt.size}
			if got := cfg.MaxUploadSizeBytes(); got != tt.want {
				t.Errorf("MaxUploadSizeBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAPIConfigValidation(t *testing.T) {
	cfg := &config.APIConfig{CDNBaseURL: "ftp://cdn.example.com"}
	if err := cfg.Finalize(); err == nil {
		t.Error("expected error for non-http cdn_base_url")
	}
}
