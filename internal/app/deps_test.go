package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		DBTimeout:       time.Second,
		ProductCacheTTL: time.Minute,
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			JWTIssuer:  "tradepost-test",
			AccessTTL:  time.Minute,
			RefreshTTL: time.Hour,
		},
		ObjectStore: config.ObjectStoreConfig{
			Bucket:        "test-bucket",
			Endpoint:      "http://localhost:9000",
			Region:        "us-east-1",
			UploadTimeout: time.Second,
		},
		RateLimit: config.RateLimitConfig{
			Requests: 10,
			Window:   time.Minute,
			Burst:    10,
			TTL:      time.Minute,
		},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, codec, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codec == nil {
		t.Fatal("expected token codec to be configured")
	}

	if deps.Credentials == nil {
		t.Fatal("expected credential verifier to be configured")
	}
	if deps.Tokens == nil {
		t.Fatal("expected token issuer to be configured")
	}
	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Products == nil {
		t.Fatal("expected product store to be configured")
	}
	if deps.Images == nil {
		t.Fatal("expected image repository to be configured")
	}
	if deps.Uploader == nil {
		t.Fatal("expected image uploader to be configured")
	}
	if deps.AuthLimiter == nil {
		t.Fatal("expected rate limiter to be configured")
	}
}

func TestBuildDependenciesRejectsEmptySecret(t *testing.T) {
	cfg := config.Config{
		Auth: config.AuthConfig{JWTIssuer: "tradepost-test"},
	}

	if _, _, err := buildDependencies(context.Background(), fakePool{}, cfg); err == nil {
		t.Fatal("expected error for missing signing secret")
	}
}
