package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"

	auditService = "order-service"
)

// EventPublisher emits order lifecycle events, usually to RabbitMQ.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload any) error
}

// OrderNotifier sends the confirmation mail for a new order.
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

type OrderedProduct struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  int    `json:"quantity,omitempty" validate:"omitempty,gt=0"`
}

// PlaceOrderInput is the checkout payload. Status is accepted for
// compatibility but new orders always start Pending.
type PlaceOrderInput struct {
	UserID          string           `json:"userId" validate:"required,max=64"`
	Date            string           `json:"date" validate:"required,max=32"`
	Time            string           `json:"time" validate:"required,max=32"`
	Address         string           `json:"address" validate:"required"`
	Price           float64          `json:"price" validate:"gte=0"`
	ProductsOrdered []OrderedProduct `json:"productsOrdered" validate:"required,min=1,dive"`
	PaymentStatus   string           `json:"paymentStatus"`
	PaymentMethod   string           `json:"paymentMethod"`
	Status          string           `json:"status"`
}

type PlaceOrderResult struct {
	OrderID          string        `json:"orderId"`
	TrackingID       string        `json:"trackingId"`
	NotificationSent bool          `json:"notificationSent"`
	Order            *models.Order `json:"-"`
}

// OrderWithProducts is an order plus the catalog entries it references.
type OrderWithProducts struct {
	models.Order
	Products []models.Product `json:"products"`
}

type OrderServiceDeps struct {
	Orders    repositories.OrderRepository
	Users     repositories.UserRepository
	Products  repositories.ProductRepository
	UserCache repositories.UserCache // optional
	Audit     repositories.AuditLog  // optional
	Events    EventPublisher         // optional
	Notifier  OrderNotifier
	IDs       *IDAllocator
	Timeout   time.Duration
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// OrderService handles business logic related to orders.
type OrderService struct {
	OrderServiceDeps
}

// NewOrderService creates a new OrderService.
func NewOrderService(deps OrderServiceDeps) *OrderService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.IDs == nil {
		deps.IDs = NewIDAllocator(nil, 0, deps.Metrics, deps.Logger)
	}
	return &OrderService{OrderServiceDeps: deps}
}

// PlaceOrder turns a checkout into a persisted order. Validation and the user
// lookup happen before any write. Event, audit and mail failures after the
// insert are logged and never undo the order.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	paymentStatus := models.PaymentStatusPending
	if in.PaymentStatus != "" {
		ps, ok := models.ParsePaymentStatus(in.PaymentStatus)
		if !ok {
			return nil, apperrors.Validation("invalid input", map[string]string{"paymentStatus": "unknown payment status " + in.PaymentStatus})
		}
		paymentStatus = ps
	}
	var paymentMethod models.PaymentMethod
	if in.PaymentMethod != "" {
		pm, ok := models.ParsePaymentMethod(in.PaymentMethod)
		if !ok {
			return nil, apperrors.Validation("invalid input", map[string]string{"paymentMethod": "unknown payment method " + in.PaymentMethod})
		}
		paymentMethod = pm
	}

	logger := logging.FromContext(ctx, s.Logger)
	storeCtx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	contact, err := s.lookupUser(storeCtx, in.UserID)
	if err != nil {
		return nil, err
	}

	productIDs := make(models.StringList, 0, len(in.ProductsOrdered))
	for _, p := range in.ProductsOrdered {
		productIDs = append(productIDs, p.ProductID)
	}

	order := &models.Order{
		UserID:        in.UserID,
		Name:          contact.Name,
		Email:         contact.Email,
		Address:       in.Address,
		OrderDate:     in.Date,
		OrderTime:     in.Time,
		ProductIDs:    productIDs,
		Price:         in.Price,
		Status:        models.OrderStatusPending,
		PaymentStatus: paymentStatus,
		PaymentMethod: paymentMethod,
	}
	_, _, err = s.IDs.AllocatePair(storeCtx, OrderCodes, TrackingCodes, func(ctx context.Context, orderID, trackingID string) error {
		order.ID = 0
		order.OrderID = orderID
		order.TrackingID = trackingID
		return s.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, storeError(err, "failed to save order")
	}
	s.Metrics.OrderPlaced(string(order.PaymentStatus))
	logger.Info("order placed",
		zap.String("orderId", order.OrderID),
		zap.String("trackingId", order.TrackingID),
		zap.String("userId", order.UserID),
	)

	s.afterWrite(ctx, EventOrderPlaced, order, bson.M{
		"userId":        order.UserID,
		"trackingId":    order.TrackingID,
		"price":         order.Price,
		"paymentStatus": string(order.PaymentStatus),
		"productIds":    []string(order.ProductIDs),
	})

	result := &PlaceOrderResult{OrderID: order.OrderID, TrackingID: order.TrackingID, Order: order}
	if s.Notifier != nil {
		if err := s.Notifier.SendOrderConfirmation(ctx, order); err != nil {
			logger.Warn("order confirmation not sent", zap.String("orderId", order.OrderID), zap.Error(err))
		} else {
			result.NotificationSent = true
		}
	}
	return result, nil
}

func (s *OrderService) lookupUser(ctx context.Context, userID string) (*repositories.CachedUser, error) {
	if s.UserCache != nil {
		cached, err := s.UserCache.Get(ctx, userID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			s.Logger.Warn("user cache unavailable", zap.Error(err))
		}
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user %s not found", userID)
	}
	contact := &repositories.CachedUser{ID: user.ID, Name: user.Name, Email: user.Email}
	if s.UserCache != nil {
		if err := s.UserCache.Put(ctx, contact); err != nil {
			s.Logger.Warn("failed to cache user", zap.String("userId", userID), zap.Error(err))
		}
	}
	return contact, nil
}

// afterWrite publishes the event and writes the audit entry. Both are best
// effort.
func (s *OrderService) afterWrite(ctx context.Context, event string, order *models.Order, data bson.M) {
	logger := logging.FromContext(ctx, s.Logger)
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	if s.Events != nil {
		payload := map[string]any{"type": event, "orderId": order.OrderID, "status": order.Status}
		for k, v := range data {
			payload[k] = v
		}
		if err := s.Events.PublishEvent(ctx, event, payload); err != nil {
			logger.Warn("failed to publish order event", zap.String("event", event), zap.String("orderId", order.OrderID), zap.Error(err))
		}
	}
	if s.Audit != nil {
		entry := &repositories.AuditEntry{Service: auditService, Action: event, EntityID: order.OrderID, Data: data}
		if err := s.Audit.Record(ctx, entry); err != nil {
			logger.Warn("failed to write audit entry", zap.String("orderId", order.OrderID), zap.Error(err))
		}
	}
}

// FindUserOrders returns the user's orders with their products resolved.
// A user without orders is NotFound.
func (s *OrderService) FindUserOrders(ctx context.Context, userID string) ([]OrderWithProducts, error) {
	if userID == "" {
		return nil, apperrors.Validation("User ID is required", map[string]string{"userId": "required"})
	}
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	orders, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "failed to find orders")
	}
	if len(orders) == 0 {
		return nil, apperrors.NotFound("No orders found for this user")
	}

	cache := make(map[string]*models.Product)
	out := make([]OrderWithProducts, 0, len(orders))
	for _, o := range orders {
		entry := OrderWithProducts{Order: o, Products: []models.Product{}}
		for _, pid := range o.ProductIDs {
			p, seen := cache[pid]
			if !seen && s.Products != nil {
				p, err = s.Products.GetByProductID(ctx, pid)
				if err != nil && !errors.Is(err, repositories.ErrNotFound) {
					return nil, storeError(err, "failed to load product %s", pid)
				}
				cache[pid] = p
			}
			if p != nil {
				entry.Products = append(entry.Products, *p)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	order, err := s.Orders.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "order %s not found", orderID)
	}
	return order, nil
}

func (s *OrderService) TrackOrder(ctx context.Context, trackingID string) (*models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	order, err := s.Orders.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, storeError(err, "no order with tracking id %s", trackingID)
	}
	return order, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	orders, err := s.Orders.ListAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list orders")
	}
	return orders, nil
}

// UpdateStatus moves an order forward through its lifecycle.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.Validation("invalid input", map[string]string{"status": "unknown order status " + status})
	}
	storeCtx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	current, err := s.Orders.GetByOrderID(storeCtx, orderID)
	if err != nil {
		return nil, storeError(err, "order %s not found", orderID)
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.InvalidTransition("cannot move order %s from %s to %s", orderID, current.Status, next)
	}
	updated, err := s.Orders.UpdateStatus(storeCtx, orderID, current.Status, next)
	if err != nil {
		return nil, storeError(err, "order %s changed while updating its status", orderID)
	}
	s.afterWrite(ctx, EventOrderStatusChanged, updated, bson.M{
		"from": string(current.Status),
		"to":   string(next),
	})
	return updated, nil
}

// AuditTrail returns the recorded changes of an order, newest first. It is
// empty when no audit log is configured.
func (s *OrderService) AuditTrail(ctx context.Context, orderID string, limit int64) ([]*repositories.AuditEntry, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	if s.Audit == nil {
		return []*repositories.AuditEntry{}, nil
	}
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()
	entries, err := s.Audit.List(ctx, orderID, limit)
	if err != nil {
		return nil, apperrors.ExternalService(err, "failed to read audit trail")
	}
	return entries, nil
}
