package repositories

import (
	"context"

	"github.com/tradepost/backend/internal/models"
)

// ProductRepository defines the data access contract for product listings.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product) error
	FindByID(ctx context.Context, id string) (models.Product, error)
	Delete(ctx context.Context, id string) error
}

// ImageRepository defines the data access contract for uploaded file records.
type ImageRepository interface {
	CreateAll(ctx context.Context, images []models.ProductImage) error
	ListByProduct(ctx context.Context, productID string) ([]models.ProductImage, error)
	FindByURL(ctx context.Context, url string) (models.ProductImage, error)
	Delete(ctx context.Context, id string) error
}
