package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/models"
)

// MemoryOrderRepository is an in-memory implementation of OrderRepository.
// It enforces the same uniqueness rules as the SQL schema.
type MemoryOrderRepository struct {
	orders     map[string]models.Order
	byTracking map[string]string
	seq        uint
	mu         sync.RWMutex
}

// NewMemoryOrderRepository creates a new instance of MemoryOrderRepository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:     make(map[string]models.Order),
		byTracking: make(map[string]string),
	}
}

// Create adds a new order.
func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.OrderID]; ok {
		return fmt.Errorf("order id %s already taken: %w", order.OrderID, ErrDuplicateKey)
	}
	if _, ok := r.byTracking[order.TrackingID]; ok {
		return fmt.Errorf("tracking id %s already taken: %w", order.TrackingID, ErrDuplicateKey)
	}
	r.seq++
	order.ID = r.seq
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentStatusPending
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.OrderID] = *order
	r.byTracking[order.TrackingID] = order.OrderID
	return nil
}

// GetByOrderID returns an order by its order id.
func (r *MemoryOrderRepository) GetByOrderID(_ context.Context, orderID string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	return &order, nil
}

func (r *MemoryOrderRepository) GetByTrackingID(ctx context.Context, trackingID string) (*models.Order, error) {
	r.mu.RLock()
	orderID, ok := r.byTracking[trackingID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("order with tracking id %s: %w", trackingID, ErrNotFound)
	}
	return r.GetByOrderID(ctx, orderID)
}

func (r *MemoryOrderRepository) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	return r.list(func(o models.Order) bool { return o.UserID == userID }), nil
}

// ListAll returns all orders.
func (r *MemoryOrderRepository) ListAll(_ context.Context) ([]models.Order, error) {
	return r.list(func(models.Order) bool { return true }), nil
}

// UpdateStatus updates the status of an order.
func (r *MemoryOrderRepository) UpdateStatus(_ context.Context, orderID string, from, next models.OrderStatus) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("order %s not found for status update: %w", orderID, ErrNotFound)
	}
	if order.Status != from {
		return nil, fmt.Errorf("order %s is no longer %s: %w", orderID, from, ErrStaleVersion)
	}
	order.Status = next
	order.UpdatedAt = time.Now()
	r.orders[orderID] = order
	return &order, nil
}

func (r *MemoryOrderRepository) list(keep func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}
