package cache_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mwhitlock/prism/pkg/cache"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &cache.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Addr != "localhost:6379" {
		t.Errorf("Addr = %q, want localhost:6379", cfg.Addr)
	}
	if cfg.KeyPrefix != "image:" {
		t.Errorf("KeyPrefix = %q, want image:", cfg.KeyPrefix)
	}
	if cfg.TTL != "1h" {
		t.Errorf("TTL = %q, want 1h", cfg.TTL)
	}
	if got := cfg.TTLDuration(); got != time.Hour {
		t.Errorf("TTLDuration() = %v, want 1h", got)
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := &cache.Config{
		Addr:      "cache-a:6379",
		KeyPrefix: "image:",
		TTL:       "1h",
	}

	cfg.Merge(&cache.Config{
		Addr: "cache-b:6379",
		TTL:  "30m",
	})

	if cfg.Addr != "cache-b:6379" {
		t.Errorf("Addr = %q, want overlay value", cfg.Addr)
	}
	if cfg.KeyPrefix != "image:" {
		t.Errorf("KeyPrefix = %q, want base value preserved", cfg.KeyPrefix)
	}
	if cfg.TTL != "30m" {
		t.Errorf("TTL = %q, want overlay value", cfg.TTL)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("TEST_CACHE_ADDR", "redis.internal:6380")
	t.Setenv("TEST_CACHE_DB", "3")
	t.Setenv("TEST_CACHE_TTL", "15m")

	cfg := &cache.Config{}
	env := &cache.Env{
		Addr: "TEST_CACHE_ADDR",
		DB:   "TEST_CACHE_DB",
		TTL:  "TEST_CACHE_TTL",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Addr != "redis.internal:6380" {
		t.Errorf("Addr = %q, want env value", cfg.Addr)
	}
	if cfg.DB != 3 {
		t.Errorf("DB = %d, want 3", cfg.DB)
	}
	if cfg.TTL != "15m" {
		t.Errorf("TTL = %q, want env value", cfg.TTL)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     cache.Config
		wantErr bool
	}{
		{"valid", cache.Config{Addr: "localhost:6379", TTL: "1h"}, false},
		{"invalid ttl", cache.Config{Addr: "localhost:6379", TTL: "soon"}, true},
		{"zero ttl", cache.Config{Addr: "localhost:6379", TTL: "0s"}, true},
		{"negative ttl", cache.Config{Addr: "localhost:6379", TTL: "-5m"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestKey(t *testing.T) {
	cfg := &cache.Config{KeyPrefix: "image:", Addr: "localhost:6379", TTL: "1h"}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sys := cache.New(cfg, logger)

	if got := sys.Key(42); got != "image:42" {
		t.Errorf("Key(42) = %q, want image:42", got)
	}
	if got := sys.Key(0); got != "image:0" {
		t.Errorf("Key(0) = %q, want image:0", got)
	}
}
