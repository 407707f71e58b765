package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/metrics"
	"storefront/internal/repositories"
)

// CodeSpace describes the shape of one kind of public identifier.
type CodeSpace struct {
	Name     string
	Prefix   string
	Alphabet string
	Length   int
	// FirstNonZero keeps numeric codes at full width (100000-999999).
	FirstNonZero bool
}

const (
	digits       = "0123456789"
	upperAlnum   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	sellerPrefix = "MBSLR"
)

var (
	OrderCodes    = CodeSpace{Name: "order", Alphabet: digits, Length: 6, FirstNonZero: true}
	ProductCodes  = CodeSpace{Name: "product", Alphabet: digits, Length: 6, FirstNonZero: true}
	TrackingCodes = CodeSpace{Name: "tracking", Alphabet: upperAlnum, Length: 12}
	SellerCodes   = CodeSpace{Name: "seller", Prefix: sellerPrefix, Alphabet: digits, Length: 5, FirstNonZero: true}
	OTPCodes      = CodeSpace{Name: "otp", Alphabet: digits, Length: 6, FirstNonZero: true}
)

// Valid reports whether code has the shape of the space.
func (s CodeSpace) Valid(code string) bool {
	if !strings.HasPrefix(code, s.Prefix) {
		return false
	}
	body := code[len(s.Prefix):]
	if len(body) != s.Length {
		return false
	}
	for i, r := range body {
		if !strings.ContainsRune(s.Alphabet, r) {
			return false
		}
		if i == 0 && s.FirstNonZero && r == '0' {
			return false
		}
	}
	return true
}

// DrawFunc returns a random candidate in the given space.
type DrawFunc func(space CodeSpace) (string, error)

// RandomCode draws a candidate from crypto/rand.
func RandomCode(space CodeSpace) (string, error) {
	var b strings.Builder
	b.Grow(len(space.Prefix) + space.Length)
	b.WriteString(space.Prefix)
	for i := 0; i < space.Length; i++ {
		alphabet := space.Alphabet
		if i == 0 && space.FirstNonZero {
			alphabet = strings.TrimPrefix(alphabet, "0")
		}
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to draw random code: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// ReserveFunc persists a candidate under a uniqueness constraint. It returns
// an error wrapping repositories.ErrDuplicateKey when the code is taken.
type ReserveFunc func(ctx context.Context, code string) error

// IDAllocator hands out codes that no persisted record of the same kind holds.
// Uniqueness comes from the reserve step, never from a prior lookup.
type IDAllocator struct {
	draw        DrawFunc
	maxAttempts int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewIDAllocator creates a new IDAllocator. A nil draw uses RandomCode.
func NewIDAllocator(draw DrawFunc, maxAttempts int, m *metrics.Metrics, logger *zap.Logger) *IDAllocator {
	if draw == nil {
		draw = RandomCode
	}
	if maxAttempts <= 0 {
		maxAttempts = 32
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IDAllocator{draw: draw, maxAttempts: maxAttempts, metrics: m, logger: logger}
}

// Draw returns a single candidate without reserving it.
func (a *IDAllocator) Draw(space CodeSpace) (string, error) {
	return a.draw(space)
}

// Allocate draws candidates and calls reserve until one is accepted.
func (a *IDAllocator) Allocate(ctx context.Context, space CodeSpace, reserve ReserveFunc) (string, error) {
	return a.allocate(ctx, space.Name, func() (string, error) { return a.draw(space) }, reserve)
}

// AllocatePair reserves two codes at once, e.g. an order id with its tracking
// code. A collision on either redraws both.
func (a *IDAllocator) AllocatePair(ctx context.Context, first, second CodeSpace, reserve func(ctx context.Context, a, b string) error) (string, string, error) {
	var firstCode, secondCode string
	name := first.Name + "+" + second.Name
	_, err := a.allocate(ctx, name, func() (string, error) {
		var err error
		if firstCode, err = a.draw(first); err != nil {
			return "", err
		}
		if secondCode, err = a.draw(second); err != nil {
			return "", err
		}
		return firstCode + "/" + secondCode, nil
	}, func(ctx context.Context, _ string) error {
		return reserve(ctx, firstCode, secondCode)
	})
	if err != nil {
		return "", "", err
	}
	return firstCode, secondCode, nil
}

func (a *IDAllocator) allocate(ctx context.Context, space string, draw func() (string, error), reserve ReserveFunc) (string, error) {
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", apperrors.ExternalService(err, "identifier allocation interrupted")
		}
		code, err := draw()
		if err != nil {
			return "", apperrors.Internal(err, "failed to generate %s identifier", space)
		}
		err = reserve(ctx, code)
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return "", storeError(err, "failed to reserve %s identifier", space)
		}
		a.metrics.IDCollision(space)
		a.logger.Debug("identifier collision", zap.String("space", space), zap.Int("attempt", attempt))
	}
	a.metrics.IDExhausted(space)
	a.logger.Warn("identifier space exhausted", zap.String("space", space), zap.Int("attempts", a.maxAttempts))
	return "", apperrors.ResourceExhausted("could not allocate a unique %s identifier after %d attempts", space, a.maxAttempts)
}
