package repositories

import (
	"context"

	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, includeHidden bool) ([]models.Product, error)
	GetByProductID(ctx context.Context, productID string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	ListMissingProductID(ctx context.Context, limit int) ([]models.Product, error)
	// AssignProductID sets the code on a product that has none yet.
	AssignProductID(ctx context.Context, id uint, productID string) error
	UpdateStock(ctx context.Context, productID string, inStock, sold int) (*models.Product, error)
	UpdateVisibility(ctx context.Context, productID string, visible bool) (*models.Product, error)
}
