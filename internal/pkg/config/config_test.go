package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("unexpected secret %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 1200*time.Second {
		t.Fatalf("expected 1200s ttl, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Fatalf("expected bcrypt cost 10, got %d", cfg.Auth.BcryptCost)
	}
	if cfg.Port != "8080" || cfg.Mongo.Database != "access_service" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "s3cret",
		"TOKEN_TTL":          "5m",
		"BCRYPT_COST":        "12",
		"LOGIN_MAX_ATTEMPTS": "0",
		"ENV":                "production",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Auth.TokenTTL != 5*time.Minute || cfg.Auth.BcryptCost != 12 || cfg.Auth.LoginMaxAttempts != 0 {
		t.Fatalf("unexpected auth config: %+v", cfg.Auth)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
}

func TestLoadFrom_MissingSecret(t *testing.T) {
	if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}

func TestLoadFrom_NonPositiveTTL(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
		"TOKEN_TTL":  "0s",
	}))
	if err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}
