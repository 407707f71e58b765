package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperrors"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

type capturingOTPSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (c *capturingOTPSender) SendOTP(_ context.Context, email, code string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.codes == nil {
		c.codes = map[string]string{}
	}
	c.codes[email] = code
	return nil
}

type sellerFixture struct {
	svc     *services.SellerService
	sellers *repositories.GORMSellerRepository
	sender  *capturingOTPSender
}

func newSellerFixture(t *testing.T, draw services.DrawFunc, otpTTL time.Duration) *sellerFixture {
	db := newTestDB(t)
	f := &sellerFixture{
		sellers: repositories.NewGORMSellerRepository(db),
		sender:  &capturingOTPSender{},
	}
	f.svc = services.NewSellerService(
		f.sellers,
		repositories.NewGORMOneTimeCodeRepository(db),
		f.sender,
		services.NewIDAllocator(draw, 8, nil, nil),
		otpTTL, time.Second, zap.NewNop(),
	)
	return f
}

func TestSellerService_Signup(t *testing.T) {
	f := newSellerFixture(t, scriptedDraw("MBSLR11111", "MBSLR11111", "MBSLR22222"), time.Minute)
	ctx := context.Background()

	first, err := f.svc.Signup(ctx, services.SellerSignupInput{PhoneNumber: "9876543210", EmailID: "a@shop.in", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "MBSLR11111", first.SellerID)
	assert.Equal(t, "Not Available", first.BusinessName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(first.Password), []byte("secret1")))

	second, err := f.svc.Signup(ctx, services.SellerSignupInput{PhoneNumber: "9876543211", EmailID: "b@shop.in", Password: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, "MBSLR22222", second.SellerID, "collision redraws")

	_, err = f.svc.Signup(ctx, services.SellerSignupInput{PhoneNumber: "9876543212", EmailID: "a@shop.in", Password: "secret3"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	_, err = f.svc.Signup(ctx, services.SellerSignupInput{EmailID: "not-an-email", Password: "x"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	verified, err := f.svc.VerifySeller(ctx, "MBSLR22222")
	require.NoError(t, err)
	assert.Equal(t, "b@shop.in", verified.Email)

	_, err = f.svc.VerifySeller(ctx, "MBSLR99999")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestSellerService_OTPFlow(t *testing.T) {
	f := newSellerFixture(t, nil, time.Minute)
	ctx := context.Background()

	err := f.svc.SendOTP(ctx, "ghost@shop.in")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))

	_, err = f.svc.Signup(ctx, services.SellerSignupInput{PhoneNumber: "9876543210", EmailID: "a@shop.in", Password: "secret1"})
	require.NoError(t, err)

	err = f.svc.VerifyOTP(ctx, services.VerifyOTPInput{EmailID: "a@shop.in", OTP: "123456"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "no code sent yet")

	require.NoError(t, f.svc.SendOTP(ctx, "a@shop.in"))
	code := f.sender.codes["a@shop.in"]
	assert.Regexp(t, `^[1-9][0-9]{5}$`, code)

	wrong := "000000"
	err = f.svc.VerifyOTP(ctx, services.VerifyOTPInput{EmailID: "a@shop.in", OTP: wrong})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Equal(t, "Invalid OTP", apperrors.Message(err))

	require.NoError(t, f.svc.VerifyOTP(ctx, services.VerifyOTPInput{EmailID: "a@shop.in", OTP: code}))
	seller, err := f.sellers.GetByEmail(ctx, "a@shop.in")
	require.NoError(t, err)
	assert.True(t, seller.EmailVerified)
	assert.True(t, seller.PhoneVerified)

	err = f.svc.VerifyOTP(ctx, services.VerifyOTPInput{EmailID: "a@shop.in", OTP: code})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation), "codes are single use")
}

func TestSellerService_OTPExpires(t *testing.T) {
	f := newSellerFixture(t, nil, -time.Second)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, services.SellerSignupInput{PhoneNumber: "9876543210", EmailID: "a@shop.in", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.svc.SendOTP(ctx, "a@shop.in"))

	err = f.svc.VerifyOTP(ctx, services.VerifyOTPInput{EmailID: "a@shop.in", OTP: f.sender.codes["a@shop.in"]})
	require.Error(t, err)
	assert.Equal(t, "No OTP found", apperrors.Message(err))
}
