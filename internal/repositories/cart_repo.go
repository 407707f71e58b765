package repositories

import (
	"context"

	"storefront/internal/models"
)

// CartRepository defines the interface for cart data access. Update and
// Delete are compare-and-swap on Cart.Version.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Cart, error)
	GetByCartID(ctx context.Context, cartID string) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) error
	Update(ctx context.Context, cart *models.Cart) error
	DeleteByUserID(ctx context.Context, userID string) error
	ListLegacy(ctx context.Context, limit int) ([]models.Cart, error)
}
