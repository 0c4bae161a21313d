package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := []byte(`
server:
  port: "9090"
  publicBaseUrl: https://quiz.example.com
redis:
  addr: localhost:6379
auth:
  tokenTtl: 2h
  allowAdminSignup: false
`)
	if err := os.WriteFile(path, yamlBody, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "7070")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port to win, got %s", cfg.Server.Port)
	}
	if cfg.Server.PublicBaseURL != "https://quiz.example.com" {
		t.Fatalf("unexpected base url %s", cfg.Server.PublicBaseURL)
	}
	if cfg.Auth.JWTSecret != "from-env" || cfg.Auth.AllowAdminSignup {
		t.Fatalf("unexpected auth config %+v", cfg.Auth)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.Server.CORSOrigins)
	}
	if got := TTLDuration(cfg.Auth.TokenTTL, time.Hour); got != 2*time.Hour {
		t.Fatalf("expected 2h ttl, got %s", got)
	}
	if cfg.RateLimit.Requests != 100 {
		t.Fatalf("expected default rate limit, got %d", cfg.RateLimit.Requests)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.TokenTTL != "24h" || cfg.Redis.Channel == "" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %s", got)
	}
	if got := TTLDuration("not-a-duration", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for garbage, got %s", got)
	}
}
