package repositories

import (
	"context"

	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access. Create fails
// with ErrDuplicateKey when OrderID or TrackingID is already taken.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Order, error)
	GetByTrackingID(ctx context.Context, trackingID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// UpdateStatus moves the order to next only if it is still in from.
	UpdateStatus(ctx context.Context, orderID string, from, next models.OrderStatus) (*models.Order, error)
}
