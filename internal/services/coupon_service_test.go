package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) QueueBroadcast(ctx context.Context, job services.BroadcastJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func TestCouponService_Lifecycle(t *testing.T) {
	repo := repositories.NewGORMCouponRepository(newTestDB(t))
	broadcaster := new(MockBroadcaster)
	svc := services.NewCouponService(repo, broadcaster, time.Second, zap.NewNop())
	ctx := context.Background()

	broadcaster.On("QueueBroadcast", mock.Anything, services.BroadcastJob{
		Subject: "New Coupon Available!",
		Message: "A new coupon SAVE10 is now available with 10% discount. Use it in your next purchase!",
	}).Return(nil).Once()

	coupon, err := svc.Save(ctx, services.CouponInput{Code: "SAVE10", DiscountPercentage: 10})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", coupon.Code)

	_, err = svc.Save(ctx, services.CouponInput{Code: "SAVE10", DiscountPercentage: 15})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	verified, err := svc.Verify(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 10, verified.DiscountPercentage)

	_, err = svc.Verify(ctx, "NOPE")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, "Invalid coupon code", apperrors.Message(err))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	broadcaster.On("QueueBroadcast", mock.Anything, services.BroadcastJob{
		Subject: "Coupon Expired",
		Message: "The coupon SAVE10 with 10% discount has expired.",
	}).Return(nil).Once()
	require.NoError(t, svc.Delete(ctx, "SAVE10"))

	err = svc.Delete(ctx, "SAVE10")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	broadcaster.AssertExpectations(t)
}

func TestCouponService_SaveValidation(t *testing.T) {
	svc := services.NewCouponService(repositories.NewGORMCouponRepository(newTestDB(t)), nil, time.Second, nil)

	_, err := svc.Save(context.Background(), services.CouponInput{Code: "SAVE10", DiscountPercentage: 0})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Contains(t, apperrors.FieldsOf(err), "discountPercentage")

	_, err = svc.Save(context.Background(), services.CouponInput{Code: "no spaces!", DiscountPercentage: 5})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestCouponService_BroadcastFailureDoesNotFailSave(t *testing.T) {
	broadcaster := new(MockBroadcaster)
	broadcaster.On("QueueBroadcast", mock.Anything, mock.Anything).Return(apperrors.Validation("bad", nil)).Once()
	svc := services.NewCouponService(repositories.NewGORMCouponRepository(newTestDB(t)), broadcaster, time.Second, zap.NewNop())

	_, err := svc.Save(context.Background(), services.CouponInput{Code: "SAVE20", DiscountPercentage: 20})
	assert.NoError(t, err)
	broadcaster.AssertExpectations(t)
}
