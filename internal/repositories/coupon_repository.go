package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// CouponRepository defines the interface for coupon data access.
type CouponRepository interface {
	List(ctx context.Context) ([]models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	Create(ctx context.Context, coupon *models.Coupon) error
	DeleteByCode(ctx context.Context, code string) error
}

// GORMCouponRepository is a GORM implementation of CouponRepository.
type GORMCouponRepository struct {
	db *gorm.DB
}

// NewGORMCouponRepository creates a new instance of GORMCouponRepository.
func NewGORMCouponRepository(db *gorm.DB) *GORMCouponRepository {
	return &GORMCouponRepository{db: db}
}

func (r *GORMCouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	if err := r.db.WithContext(ctx).Order("id").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", translate(err))
	}
	return coupons, nil
}

func (r *GORMCouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).First(&coupon, "code = ?", code).Error; err != nil {
		return nil, fmt.Errorf("failed to get coupon %s: %w", code, translate(err))
	}
	return &coupon, nil
}

func (r *GORMCouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	if err := r.db.WithContext(ctx).Create(coupon).Error; err != nil {
		return fmt.Errorf("failed to create coupon %s: %w", coupon.Code, translate(err))
	}
	return nil
}

func (r *GORMCouponRepository) DeleteByCode(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).Where("code = ?", code).Delete(&models.Coupon{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete coupon %s: %w", code, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("coupon %s not found for deletion: %w", code, ErrNotFound)
	}
	return nil
}
