package handlers

import (
	"context"

	"github.com/tradepost/backend/internal/auth"
	"github.com/tradepost/backend/internal/models"
	"github.com/tradepost/backend/internal/uploads"
)

// CredentialVerifier registers identities and checks supplied credentials.
type CredentialVerifier interface {
	Register(ctx context.Context, reg auth.Registration) (models.User, error)
	Verify(ctx context.Context, email, password string) (models.User, error)
}

// TokenIssuer mints and renews session token pairs.
type TokenIssuer interface {
	Issue(userID string) (models.SessionTokens, error)
	Refresh(refreshToken string) (models.SessionTokens, error)
}

// UserStore captures the persistence operations required by the product handlers.
type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// ProductStore captures persistence for product listings.
type ProductStore interface {
	Create(ctx context.Context, product models.Product) error
	FindByID(ctx context.Context, id string) (models.Product, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore lists stored image records for product detail responses.
type ImageStore interface {
	ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error)
}

// ImageUploader pushes product images to the object store.
type ImageUploader interface {
	UploadAll(ctx context.Context, productID string, files []uploads.File) ([]models.ProductImage, error)
}
