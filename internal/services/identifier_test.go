package services_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// scriptedDraw returns the given codes in order, then falls back to random.
func scriptedDraw(codes ...string) services.DrawFunc {
	var mu sync.Mutex
	return func(space services.CodeSpace) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(codes) == 0 {
			return services.RandomCode(space)
		}
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
}

func TestRandomCode_Shapes(t *testing.T) {
	spaces := []services.CodeSpace{
		services.OrderCodes, services.ProductCodes, services.TrackingCodes, services.SellerCodes, services.OTPCodes,
	}
	for _, space := range spaces {
		for i := 0; i < 200; i++ {
			code, err := services.RandomCode(space)
			require.NoError(t, err)
			require.True(t, space.Valid(code), "%s code %q", space.Name, code)
		}
	}

	code, _ := services.RandomCode(services.SellerCodes)
	assert.Regexp(t, `^MBSLR[1-9][0-9]{4}$`, code)
	code, _ = services.RandomCode(services.TrackingCodes)
	assert.Regexp(t, `^[0-9A-Z]{12}$`, code)
	code, _ = services.RandomCode(services.OrderCodes)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, code)
}

func TestCodeSpace_Valid(t *testing.T) {
	assert.False(t, services.OrderCodes.Valid("012345"))
	assert.False(t, services.OrderCodes.Valid("12345"))
	assert.False(t, services.TrackingCodes.Valid("abcdefghijkl"))
	assert.False(t, services.SellerCodes.Valid("SLR12345"))
	assert.True(t, services.SellerCodes.Valid("MBSLR12345"))
}

func TestIDAllocator_RetriesOnCollision(t *testing.T) {
	m := metrics.New()
	alloc := services.NewIDAllocator(scriptedDraw("111111", "111111", "222222"), 5, m, zap.NewNop())
	taken := map[string]bool{"111111": true}

	attempts := 0
	code, err := alloc.Allocate(context.Background(), services.OrderCodes, func(_ context.Context, code string) error {
		attempts++
		if taken[code] {
			return fmt.Errorf("insert: %w", repositories.ErrDuplicateKey)
		}
		taken[code] = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "222222", code)
	assert.Equal(t, 3, attempts)
}

func TestIDAllocator_Exhausted(t *testing.T) {
	alloc := services.NewIDAllocator(scriptedDraw("111111", "111111", "111111"), 3, nil, nil)

	_, err := alloc.Allocate(context.Background(), services.OrderCodes, func(context.Context, string) error {
		return repositories.ErrDuplicateKey
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindResourceExhausted))
}

func TestIDAllocator_OtherErrorsStop(t *testing.T) {
	alloc := services.NewIDAllocator(nil, 10, nil, nil)
	boom := errors.New("disk full")

	attempts := 0
	_, err := alloc.Allocate(context.Background(), services.ProductCodes, func(context.Context, string) error {
		attempts++
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, boom)
	assert.True(t, apperrors.Is(err, apperrors.KindPersistence))
}

func TestIDAllocator_ConcurrentAllocationsAreDistinct(t *testing.T) {
	// A tiny code space forces real collisions between goroutines.
	space := services.CodeSpace{Name: "tiny", Alphabet: "0123456789", Length: 2}
	alloc := services.NewIDAllocator(nil, 500, nil, nil)

	var mu sync.Mutex
	taken := map[string]bool{}
	reserve := func(_ context.Context, code string) error {
		mu.Lock()
		defer mu.Unlock()
		if taken[code] {
			return repositories.ErrDuplicateKey
		}
		taken[code] = true
		return nil
	}

	const n = 40
	codes := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code, err := alloc.Allocate(context.Background(), space, reserve)
			assert.NoError(t, err)
			codes[i] = code
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate code %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, n)
}

func TestIDAllocator_AllocatePairRedrawsBoth(t *testing.T) {
	repo := repositories.NewMemoryOrderRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Order{OrderID: "111111", TrackingID: "AAAAAAAAAAAA"}))

	alloc := services.NewIDAllocator(scriptedDraw("111111", "BBBBBBBBBBBB", "222222", "CCCCCCCCCCCC"), 5, nil, nil)
	orderID, trackingID, err := alloc.AllocatePair(ctx, services.OrderCodes, services.TrackingCodes, func(ctx context.Context, a, b string) error {
		return repo.Create(ctx, &models.Order{OrderID: a, TrackingID: b})
	})
	require.NoError(t, err)
	assert.Equal(t, "222222", orderID)
	assert.Equal(t, "CCCCCCCCCCCC", trackingID)
}
