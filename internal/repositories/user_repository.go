package repositories

import (
	"context"

	"storefront/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ListPage returns up to limit users ordered by id, starting after afterID.
	ListPage(ctx context.Context, afterID string, limit int) ([]models.User, error)
}
