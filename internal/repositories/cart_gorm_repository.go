package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) GetByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, translate(err))
	}
	return &cart, nil
}

func (r *GORMCartRepository) GetByCartID(ctx context.Context, cartID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.WithContext(ctx).First(&cart, "cart_id = ?", cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart %s: %w", cartID, translate(err))
	}
	return &cart, nil
}

// Create inserts a new cart at version 1. A second cart for the same user or
// with the same cart id fails with ErrDuplicateKey.
func (r *GORMCartRepository) Create(ctx context.Context, cart *models.Cart) error {
	cart.Version = 1
	cart.SchemaVersion = models.CurrentCartSchema
	if err := r.db.WithContext(ctx).Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart for user %s: %w", cart.UserID, translate(err))
	}
	return nil
}

// Update writes cart.Items if the stored version still equals cart.Version,
// then bumps the version.
func (r *GORMCartRepository) Update(ctx context.Context, cart *models.Cart) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Cart{}).
		Where("id = ? AND version = ?", cart.ID, cart.Version).
		Updates(map[string]any{
			"items":          cart.Items,
			"version":        cart.Version + 1,
			"schema_version": models.CurrentCartSchema,
			"updated_at":     now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update cart for user %s: %w", cart.UserID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart for user %s changed concurrently: %w", cart.UserID, ErrStaleVersion)
	}
	cart.Version++
	cart.SchemaVersion = models.CurrentCartSchema
	cart.UpdatedAt = now
	return nil
}

func (r *GORMCartRepository) DeleteByUserID(ctx context.Context, userID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Cart{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart for user %s: %w", userID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart for user %s not found for deletion: %w", userID, ErrNotFound)
	}
	return nil
}

// ListLegacy returns up to limit carts still stored in an older item shape.
func (r *GORMCartRepository) ListLegacy(ctx context.Context, limit int) ([]models.Cart, error) {
	var carts []models.Cart
	err := r.db.WithContext(ctx).
		Where("schema_version < ?", models.CurrentCartSchema).
		Order("id").Limit(limit).
		Find(&carts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list legacy carts: %w", translate(err))
	}
	return carts, nil
}
