package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}

	if cfg.Port != "4000" {
		t.Fatalf("expected default port 4000, got %s", cfg.Port)
	}
	if cfg.Auth.JWTExpires != 24*time.Hour {
		t.Fatalf("expected 24h token lifetime, got %v", cfg.Auth.JWTExpires)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("expected redis disabled by default, got %q", cfg.Redis.Addr)
	}
	if cfg.RateLimit.AuthRequests != 10 || cfg.RateLimit.AuthWindow != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Production() {
		t.Fatalf("expected development environment by default")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "secret",
		"PORT":           "9090",
		"ENV":            "production",
		"API_PREFIX":     "/api",
		"CORS_ORIGINS":   "https://a.example,https://b.example",
		"JWT_EXPIRES_IN": "2h",
		"REDIS_ADDR":     "localhost:6379",
	}))
	if err != nil {
		t.Fatalf("LoadWith returned error: %v", err)
	}

	if cfg.Port != "9090" || cfg.APIPrefix != "/api" || !cfg.Production() {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.CORS) != 2 || cfg.CORS[1] != "https://b.example" {
		t.Fatalf("unexpected CORS origins: %v", cfg.CORS)
	}
	if cfg.Auth.JWTExpires != 2*time.Hour {
		t.Fatalf("expected 2h, got %v", cfg.Auth.JWTExpires)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected redis addr: %s", cfg.Redis.Addr)
	}
}

func TestLoadWith_RequiresSecret(t *testing.T) {
	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}
