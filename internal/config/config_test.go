package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadStorageEndpointOptIn(t *testing.T) {
	t.Setenv("FAKTURA_S3_ENDPOINT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Endpoint != "" {
		t.Fatalf("expected empty endpoint without explicit config, got %q", cfg.Storage.Endpoint)
	}

	t.Setenv("FAKTURA_S3_ENDPOINT", "minio.internal:9000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Endpoint != "minio.internal:9000" {
		t.Fatalf("expected configured endpoint, got %q", cfg.Storage.Endpoint)
	}
}

func TestLoadJWTSecret(t *testing.T) {
	t.Setenv("FAKTURA_ENV", "development")
	t.Setenv("FAKTURA_JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTSecret == "" {
		t.Fatal("expected a development fallback secret")
	}

	t.Setenv("FAKTURA_ENV", "production")
	if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("expected missing secret error in production, got %v", err)
	}
}

func TestLoadDurationFallback(t *testing.T) {
	t.Setenv("FAKTURA_TOKEN_TTL", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenTTL != 12*time.Hour {
		t.Fatalf("expected default ttl, got %v", cfg.TokenTTL)
	}
}
