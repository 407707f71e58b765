package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Broadcaster schedules a broadcast without waiting for delivery.
type Broadcaster interface {
	QueueBroadcast(ctx context.Context, job BroadcastJob) error
}

type CouponInput struct {
	Code               string `json:"code" validate:"required,alphanum,min=3,max=32"`
	DiscountPercentage int    `json:"discountPercentage" validate:"gte=1,lte=100"`
}

// CouponService manages discount codes and announces changes to all users.
type CouponService struct {
	repo        repositories.CouponRepository
	broadcaster Broadcaster
	timeout     time.Duration
	logger      *zap.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo repositories.CouponRepository, broadcaster Broadcaster, timeout time.Duration, logger *zap.Logger) *CouponService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CouponService{repo: repo, broadcaster: broadcaster, timeout: timeout, logger: logger}
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeError(err, "failed to list coupons")
	}
	return coupons, nil
}

// Save stores a coupon and announces it. The announcement never affects the
// result.
func (s *CouponService) Save(ctx context.Context, in CouponInput) (*models.Coupon, error) {
	in.Code = strings.TrimSpace(in.Code)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	coupon := &models.Coupon{Code: in.Code, DiscountPercentage: in.DiscountPercentage}
	if err := s.repo.Create(storeCtx, coupon); err != nil {
		return nil, storeError(err, "coupon %s already exists", in.Code)
	}
	s.announce(ctx, BroadcastJob{
		Subject: "New Coupon Available!",
		Message: fmt.Sprintf("A new coupon %s is now available with %d%% discount. Use it in your next purchase!", coupon.Code, coupon.DiscountPercentage),
	})
	return coupon, nil
}

// Verify returns the coupon for code.
func (s *CouponService) Verify(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperrors.Validation("code is required", map[string]string{"code": "required"})
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	coupon, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, storeError(err, "Invalid coupon code")
	}
	return coupon, nil
}

// Delete removes a coupon and announces its expiry.
func (s *CouponService) Delete(ctx context.Context, code string) error {
	coupon, err := s.Verify(ctx, code)
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			return apperrors.NotFound("Coupon not found")
		}
		return err
	}
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.repo.DeleteByCode(storeCtx, coupon.Code); err != nil {
		return storeError(err, "Coupon not found")
	}
	s.announce(ctx, BroadcastJob{
		Subject: "Coupon Expired",
		Message: fmt.Sprintf("The coupon %s with %d%% discount has expired.", coupon.Code, coupon.DiscountPercentage),
	})
	return nil
}

func (s *CouponService) announce(ctx context.Context, job BroadcastJob) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.QueueBroadcast(ctx, job); err != nil {
		s.logger.Warn("failed to schedule coupon broadcast", zap.String("subject", job.Subject), zap.Error(err))
	}
}
