package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

func TestProductService_CreateAllocatesCode(t *testing.T) {
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	svc := services.NewProductService(repo, services.NewIDAllocator(scriptedDraw("111111", "111111", "222222"), 8, nil, nil), time.Second, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Create(ctx, services.CreateProductInput{Name: "Teddy", Price: 499, Visibility: true})
	require.NoError(t, err)
	require.NotNil(t, first.ProductID)
	assert.Equal(t, "111111", *first.ProductID)

	second, err := svc.Create(ctx, services.CreateProductInput{Name: "Mug", Price: 199})
	require.NoError(t, err)
	assert.Equal(t, "222222", *second.ProductID)

	_, err = svc.Create(ctx, services.CreateProductInput{Name: "X", Price: -1})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	visible, err := svc.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, visible, 1)
	all, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProductService_AssignProductIDs(t *testing.T) {
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	ctx := context.Background()
	existing := "111111"
	require.NoError(t, repo.Create(ctx, &models.Product{ProductID: &existing, Name: "Has id"}))
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Create(ctx, &models.Product{Name: name}))
	}

	// The first draw collides with the existing code.
	svc := services.NewProductService(repo, services.NewIDAllocator(scriptedDraw("111111"), 8, nil, nil), time.Second, zap.NewNop())
	assigned, err := svc.AssignProductIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, assigned)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, p := range all {
		require.NotNil(t, p.ProductID, p.Name)
		assert.True(t, services.ProductCodes.Valid(*p.ProductID))
		assert.False(t, seen[*p.ProductID])
		seen[*p.ProductID] = true
	}

	again, err := svc.AssignProductIDs(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestProductService_StockAndVisibility(t *testing.T) {
	repo := repositories.NewGORMProductRepository(newTestDB(t))
	svc := services.NewProductService(repo, services.NewIDAllocator(nil, 8, nil, nil), time.Second, zap.NewNop())
	ctx := context.Background()

	p, err := svc.Create(ctx, services.CreateProductInput{Name: "Teddy", Price: 499})
	require.NoError(t, err)

	updated, err := svc.UpdateStock(ctx, *p.ProductID, services.UpdateStockInput{InStockValue: 10, SoldStockValue: 2})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.InStockValue)

	_, err = svc.UpdateStock(ctx, *p.ProductID, services.UpdateStockInput{InStockValue: -1})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	updated, err = svc.UpdateVisibility(ctx, *p.ProductID, true)
	require.NoError(t, err)
	assert.True(t, updated.Visible)

	_, err = svc.UpdateVisibility(ctx, "999999", true)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	got, err := svc.Get(ctx, *p.ProductID)
	require.NoError(t, err)
	assert.True(t, got.Visible)
}
