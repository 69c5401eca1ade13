package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.AppPort)
	}
	if cfg.Auth.AccessTTL != 30*time.Minute {
		t.Fatalf("expected 30m access ttl, got %s", cfg.Auth.AccessTTL)
	}
	if cfg.ObjectStore.Region != "ap-northeast-2" {
		t.Fatalf("expected default region, got %q", cfg.ObjectStore.Region)
	}
	if cfg.RateLimit.Requests != 10 {
		t.Fatalf("expected default rate limit, got %d", cfg.RateLimit.Requests)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TRADEPOST_PORT", "9090")
	t.Setenv("TRADEPOST_JWT_SECRET", "prod-secret")
	t.Setenv("TRADEPOST_S3_BUCKET", "prod-images")
	t.Setenv("TRADEPOST_S3_UPLOAD_TIMEOUT", "45s")
	t.Setenv("TRADEPOST_RATE_BURST", "2")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.AppPort != 9090 {
		t.Fatalf("expected overridden port, got %d", cfg.AppPort)
	}
	if cfg.Auth.JWTSecret != "prod-secret" {
		t.Fatalf("expected overridden secret, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.ObjectStore.Bucket != "prod-images" {
		t.Fatalf("expected overridden bucket, got %q", cfg.ObjectStore.Bucket)
	}
	if cfg.ObjectStore.UploadTimeout != 45*time.Second {
		t.Fatalf("expected overridden upload timeout, got %s", cfg.ObjectStore.UploadTimeout)
	}
	if cfg.RateLimit.Burst != 2 {
		t.Fatalf("expected overridden burst, got %d", cfg.RateLimit.Burst)
	}
}
