package database_test

import (
	"strings"
	"testing"

	"github.com/mwhitlock/prism/pkg/database"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := database.Config{Name: "testdb", User: "testuser"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	tests := []struct {
		name     string
		got      any
		expected any
	}{
		{"host", cfg.Host, "localhost"},
		{"port", cfg.Port, 5432},
		{"ssl_mode", cfg.SSLMode, "disable"},
		{"max_open_conns", cfg.MaxOpenConns, 25},
		{"max_idle_conns", cfg.MaxIdleConns, 5},
		{"conn_max_lifetime", cfg.ConnMaxLifetime, "15m"},
		{"conn_timeout", cfg.ConnTimeout, "5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "remotehost")
	t.Setenv("TEST_DB_PORT", "5433")
	t.Setenv("TEST_DB_NAME", "envdb")
	t.Setenv("TEST_DB_USER", "envuser")

	env := &database.Env{
		Host: "TEST_DB_HOST",
		Port: "TEST_DB_PORT",
		Name: "TEST_DB_NAME",
		User: "TEST_DB_USER",
	}

	cfg := database.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Host != "remotehost" {
		t.Errorf("host: got %s, want remotehost", cfg.Host)
	}
	if cfg.Port != 5433 {
		t.Errorf("port: got %d, want 5433", cfg.Port)
	}
	if cfg.Name != "envdb" {
		t.Errorf("name: got %s, want envdb", cfg.Name)
	}
	if cfg.User != "envuser" {
		t.Errorf("user: got %s, want envuser", cfg.User)
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{"missing name", database.Config{User: "u"}, "name required"},
		{"missing user", database.Config{Name: "db"}, "user required"},
		{"bad lifetime", database.Config{Name: "db", User: "u", ConnMaxLifetime: "forever"}, "conn_max_lifetime"},
		{"bad timeout", database.Config{Name: "db", User: "u", ConnTimeout: "soon"}, "conn_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDsn(t *testing.T) {
	cfg := database.Config{
		Host:     "localhost",
		Port:     5432,
		Name:     "prism",
		User:     "prism",
		Password: "secret",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 dbname=prism user=prism password=secret sslmode=disable"
	if got := cfg.Dsn(); got != want {
		t.Errorf("Dsn() = %q, want %q", got, want)
	}
}
