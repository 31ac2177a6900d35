package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("VIEW_SESSION_TTL", "2h")
	t.Setenv("CATALOG_SEED_DEFAULTS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.View.SessionTTL != 2*time.Hour {
		t.Errorf("expected session ttl 2h, got %s", cfg.View.SessionTTL)
	}
	if cfg.Catalog.SeedDefaults {
		t.Error("expected seed defaults to be disabled")
	}
	if cfg.View.RequestTimeout != 30*time.Second {
		t.Errorf("expected default request timeout 30s, got %s", cfg.View.RequestTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
			View:   ViewConfig{SessionTTL: time.Hour, RequestTimeout: time.Second},
			Log:    LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.View.SessionTTL = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.View.RequestTimeout = -time.Second }, wantErr: true},
		{name: "relative base url", mutate: func(c *Config) { c.View.APIBaseURL = "/api" }, wantErr: true},
		{name: "absolute base url", mutate: func(c *Config) { c.View.APIBaseURL = "http://backend:8000" }},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAPIBaseURL(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "0.0.0.0", Port: 8080}}
	if got := cfg.APIBaseURL(); got != "http://localhost:8080" {
		t.Errorf("unexpected loopback url: %s", got)
	}

	cfg.View.APIBaseURL = "https://tracker.example.com/"
	if got := cfg.APIBaseURL(); got != "https://tracker.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("DEBUG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("expected debug level, got %s", level)
	}
}
