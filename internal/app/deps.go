package app

import (
	"context"

	"github.com/tradepost/backend/internal/auth"
	"github.com/tradepost/backend/internal/catalog"
	"github.com/tradepost/backend/internal/config"
	"github.com/tradepost/backend/internal/db"
	"github.com/tradepost/backend/internal/handlers"
	"github.com/tradepost/backend/internal/middleware"
	"github.com/tradepost/backend/internal/repositories"
	"github.com/tradepost/backend/internal/storage"
	"github.com/tradepost/backend/internal/uploads"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. The returned codec also backs the bearer-token middleware.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, *auth.Codec, error) {
	codec, err := auth.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	store, err := storage.NewS3Store(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	users := repositories.NewPostgresUserRepository(pool, cfg.DBTimeout)
	products := repositories.NewPostgresProductRepository(pool, cfg.DBTimeout)
	images := repositories.NewPostgresImageRepository(pool, cfg.DBTimeout)

	limiter := middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, cfg.RateLimit.TTL)

	return handlers.Dependencies{
		Credentials: auth.NewVerifier(users),
		Tokens:      codec,
		Users:       users,
		Products:    catalog.NewCachingStore(products, cfg.ProductCacheTTL),
		Images:      images,
		Uploader:    uploads.NewUploader(store, images, cfg.ObjectStore.UploadTimeout),
		AuthLimiter: limiter,
	}, codec, nil
}
