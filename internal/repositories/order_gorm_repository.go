package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// Create inserts the order in a single statement; the unique indexes on
// order_id and tracking_id make this the identifier reservation.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", translate(err))
	}
	return nil
}

func (r *GORMOrderRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "order_id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", orderID, translate(err))
	}
	return &order, nil
}

func (r *GORMOrderRepository) GetByTrackingID(ctx context.Context, trackingID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "tracking_id = ?", trackingID).Error; err != nil {
		return nil, fmt.Errorf("failed to get order by tracking id %s: %w", trackingID, translate(err))
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc, id desc").Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, translate(err))
	}
	return orders, nil
}

func (r *GORMOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", translate(err))
	}
	return orders, nil
}

func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, orderID string, from, next models.OrderStatus) (*models.Order, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Updates(map[string]any{"status": next, "updated_at": time.Now()})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of order %s: %w", orderID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByOrderID(ctx, orderID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("order %s is no longer %s: %w", orderID, from, ErrStaleVersion)
	}
	return r.GetByOrderID(ctx, orderID)
}
