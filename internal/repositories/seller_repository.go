package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// SellerRepository defines the interface for seller data access.
type SellerRepository interface {
	Create(ctx context.Context, seller *models.Seller) error
	GetBySellerID(ctx context.Context, sellerID string) (*models.Seller, error)
	GetByEmail(ctx context.Context, email string) (*models.Seller, error)
	MarkVerified(ctx context.Context, email string) error
}

// GORMSellerRepository is a GORM implementation of SellerRepository.
type GORMSellerRepository struct {
	db *gorm.DB
}

// NewGORMSellerRepository creates a new instance of GORMSellerRepository.
func NewGORMSellerRepository(db *gorm.DB) *GORMSellerRepository {
	return &GORMSellerRepository{db: db}
}

// Create inserts the seller. A taken SellerID or Email yields ErrDuplicateKey.
func (r *GORMSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	if err := r.db.WithContext(ctx).Create(seller).Error; err != nil {
		return fmt.Errorf("failed to create seller: %w", translate(err))
	}
	return nil
}

func (r *GORMSellerRepository) GetBySellerID(ctx context.Context, sellerID string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, "seller_id = ?", sellerID).Error; err != nil {
		return nil, fmt.Errorf("failed to get seller %s: %w", sellerID, translate(err))
	}
	return &seller, nil
}

func (r *GORMSellerRepository) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, "email = ?", email).Error; err != nil {
		return nil, fmt.Errorf("failed to get seller by email %s: %w", email, translate(err))
	}
	return &seller, nil
}

// MarkVerified flags both the email and phone of the seller as verified.
func (r *GORMSellerRepository) MarkVerified(ctx context.Context, email string) error {
	res := r.db.WithContext(ctx).Model(&models.Seller{}).Where("email = ?", email).
		Updates(map[string]any{"email_verified": true, "phone_verified": true, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to verify seller %s: %w", email, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seller %s not found: %w", email, ErrNotFound)
	}
	return nil
}
