package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

const (
	cartWriteAttempts  = 5
	cartMigrationBatch = 100
)

// MergeCartInput is the payload of an add-to-cart call. Items is the full
// desired state for the listed products.
type MergeCartInput struct {
	UserID string            `json:"userId" validate:"required,max=64"`
	CartID string            `json:"cartId" validate:"omitempty,max=64"`
	Items  []models.CartItem `json:"items" validate:"dive"`
}

type UpdateQuantityInput struct {
	UserID    string `json:"userId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// CartService keeps one cart per user. Writes for one user are serialized in
// process and every write is a compare-and-swap on the cart version.
type CartService struct {
	repo    repositories.CartRepository
	locks   *keyedMutex
	timeout time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCartService creates a new CartService.
func NewCartService(repo repositories.CartRepository, timeout time.Duration, m *metrics.Metrics, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		repo:    repo,
		locks:   newKeyedMutex(),
		timeout: timeout,
		metrics: m,
		logger:  logger,
	}
}

// Merge creates the user's cart or overwrites quantities of the given
// products on the stored one, appending products it does not hold yet.
func (s *CartService) Merge(ctx context.Context, in MergeCartInput) (*models.Cart, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(in.UserID)
	defer unlock()
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	created := false
	for attempt := 0; attempt < cartWriteAttempts; attempt++ {
		cart, err := s.repo.GetByUserID(ctx, in.UserID)
		if errors.Is(err, repositories.ErrNotFound) {
			if created {
				// The insert clashed but no cart exists for the user, so the
				// cart id belongs to someone else.
				return nil, apperrors.Conflict(nil, "cart id %s is already in use", in.CartID)
			}
			cart, err = s.create(ctx, in)
			if errors.Is(err, repositories.ErrDuplicateKey) {
				created = true
				s.metrics.CartConflict()
				continue
			}
			if err != nil {
				return nil, storeError(err, "failed to create cart")
			}
			return cart, nil
		}
		if err != nil {
			return nil, storeError(err, "failed to load cart")
		}

		cart.Merge(in.Items)
		err = s.repo.Update(ctx, cart)
		if errors.Is(err, repositories.ErrStaleVersion) {
			s.metrics.CartConflict()
			s.logger.Debug("cart version conflict", zap.String("userId", in.UserID), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, storeError(err, "failed to save cart")
		}
		return cart, nil
	}
	return nil, apperrors.Conflict(repositories.ErrStaleVersion, "cart for user %s is being modified concurrently", in.UserID)
}

func (s *CartService) create(ctx context.Context, in MergeCartInput) (*models.Cart, error) {
	cartID := in.CartID
	if cartID == "" {
		cartID = uuid.New().String()
	}
	cart := &models.Cart{CartID: cartID, UserID: in.UserID}
	cart.Merge(in.Items)
	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateQuantity overwrites the quantity of one line already in the cart.
func (s *CartService) UpdateQuantity(ctx context.Context, in UpdateQuantityInput) (*models.Cart, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return s.mutate(ctx, in.UserID, func(cart *models.Cart) (bool, error) {
		if !cart.SetQuantity(in.ProductID, in.Quantity) {
			return false, apperrors.NotFound("product %s not found in cart", in.ProductID)
		}
		return true, nil
	})
}

// RemoveItem deletes one line. Removing a product that is not in the cart,
// or from a user without a cart, succeeds without writing.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if userID == "" || productID == "" {
		return nil, apperrors.Validation("userId and productId are required", requiredFields(map[string]string{
			"userId": userID, "productId": productID,
		}))
	}
	cart, err := s.mutate(ctx, userID, func(cart *models.Cart) (bool, error) {
		return cart.Remove(productID), nil
	})
	if apperrors.Is(err, apperrors.KindNotFound) {
		return nil, nil
	}
	return cart, err
}

// DeleteCart removes the user's whole cart.
func (s *CartService) DeleteCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.Validation("userId is required", map[string]string{"userId": "required"})
	}
	unlock := s.locks.Lock(userID)
	defer unlock()
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.DeleteByUserID(ctx, userID); err != nil {
		return storeError(err, "cart not found for user %s", userID)
	}
	return nil
}

func (s *CartService) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	cart, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "cart not found for user %s", userID)
	}
	return cart, nil
}

func (s *CartService) GetByCartID(ctx context.Context, cartID string) (*models.Cart, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	cart, err := s.repo.GetByCartID(ctx, cartID)
	if err != nil {
		return nil, storeError(err, "cart %s not found", cartID)
	}
	return cart, nil
}

// MigrateLegacyCarts rewrites every cart still stored in an older item shape
// and returns how many rows were rewritten.
func (s *CartService) MigrateLegacyCarts(ctx context.Context) (int, error) {
	migrated := 0
	for {
		listCtx, cancel := withTimeout(ctx, s.timeout)
		carts, err := s.repo.ListLegacy(listCtx, cartMigrationBatch)
		cancel()
		if err != nil {
			return migrated, storeError(err, "failed to list legacy carts")
		}
		if len(carts) == 0 {
			return migrated, nil
		}
		for i := range carts {
			ok, err := s.migrateOne(ctx, &carts[i])
			if err != nil {
				return migrated, err
			}
			if ok {
				migrated++
			}
		}
	}
}

func (s *CartService) migrateOne(ctx context.Context, cart *models.Cart) (bool, error) {
	unlock := s.locks.Lock(cart.UserID)
	defer unlock()
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	// Decoding already normalized the items; writing them back stamps the
	// current schema version.
	err := s.repo.Update(ctx, cart)
	if errors.Is(err, repositories.ErrStaleVersion) {
		// A concurrent write stored the cart in the current shape already.
		return false, nil
	}
	if err != nil {
		return false, storeError(err, "failed to migrate cart %s", cart.CartID)
	}
	s.logger.Info("migrated legacy cart", zap.String("cartId", cart.CartID))
	return true, nil
}

// mutate loads the user's cart, applies fn and writes it back, retrying on a
// version conflict. fn reports whether anything changed.
func (s *CartService) mutate(ctx context.Context, userID string, fn func(*models.Cart) (bool, error)) (*models.Cart, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	for attempt := 0; attempt < cartWriteAttempts; attempt++ {
		cart, err := s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, storeError(err, "cart not found for user %s", userID)
		}
		changed, err := fn(cart)
		if err != nil {
			return nil, err
		}
		if !changed {
			return cart, nil
		}
		err = s.repo.Update(ctx, cart)
		if errors.Is(err, repositories.ErrStaleVersion) {
			s.metrics.CartConflict()
			continue
		}
		if err != nil {
			return nil, storeError(err, "failed to save cart")
		}
		return cart, nil
	}
	return nil, apperrors.Conflict(repositories.ErrStaleVersion, "cart for user %s is being modified concurrently", userID)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// requiredFields lists the empty entries of values as missing.
func requiredFields(values map[string]string) map[string]string {
	fields := make(map[string]string)
	for name, v := range values {
		if v == "" {
			fields[name] = "required"
		}
	}
	return fields
}
