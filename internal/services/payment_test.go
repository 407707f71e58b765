package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/metrics"
	"storefront/internal/services"
)

func TestVerifyPaymentSignature_RoundTrip(t *testing.T) {
	sig := services.SignPayment("123456", "pay_789", "s3cret")
	assert.Len(t, sig, 64)
	assert.True(t, services.VerifyPaymentSignature("123456", "pay_789", sig, "s3cret"))
}

func TestVerifyPaymentSignature_SingleCharFlip(t *testing.T) {
	sig := services.SignPayment("123456", "pay_789", "s3cret")
	for i := range sig {
		for _, c := range []byte("0123456789abcdefABCDEFxZ|") {
			if c == sig[i] {
				continue
			}
			flipped := []byte(sig)
			flipped[i] = c
			assert.False(t, services.VerifyPaymentSignature("123456", "pay_789", string(flipped), "s3cret"), "position %d set to %q", i, c)
		}
	}
}

func TestVerifyPaymentSignature_CaseSensitive(t *testing.T) {
	sig := services.SignPayment("123456", "pay_789", "s3cret")
	require.Regexp(t, `^[0-9a-f]{64}$`, sig)
	require.Regexp(t, `[a-f]`, sig)

	assert.False(t, services.VerifyPaymentSignature("123456", "pay_789", strings.ToUpper(sig), "s3cret"))

	first := strings.IndexAny(sig, "abcdef")
	mixed := sig[:first] + strings.ToUpper(sig[first:first+1]) + sig[first+1:]
	assert.False(t, services.VerifyPaymentSignature("123456", "pay_789", mixed, "s3cret"))
}

func TestVerifyPaymentSignature_Rejects(t *testing.T) {
	sig := services.SignPayment("123456", "pay_789", "s3cret")

	assert.False(t, services.VerifyPaymentSignature("123456", "pay_789", sig, ""), "empty secret")
	assert.False(t, services.VerifyPaymentSignature("123456", "pay_789", sig, "other"), "wrong secret")
	assert.False(t, services.VerifyPaymentSignature("123457", "pay_789", sig, "s3cret"), "other order")
	assert.False(t, services.VerifyPaymentSignature("123456", "pay_789", "not-hex", "s3cret"))
	assert.False(t, services.VerifyPaymentSignature("123456", "pay_789", sig[:10], "s3cret"))
	// The separator keeps "12|3" and "1|23" apart.
	assert.False(t, services.VerifyPaymentSignature("1", "23", services.SignPayment("12", "3", "s3cret"), "s3cret"))
}

func TestPaymentService_Verify(t *testing.T) {
	svc := services.NewPaymentService("s3cret", metrics.New(), zap.NewNop())

	valid, err := svc.Verify(services.VerifyPaymentInput{
		OrderID: "123456", PaymentID: "pay_1", Signature: services.SignPayment("123456", "pay_1", "s3cret"),
	})
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = svc.Verify(services.VerifyPaymentInput{OrderID: "123456", PaymentID: "pay_1", Signature: "00"})
	require.NoError(t, err)
	assert.False(t, valid)

	_, err = svc.Verify(services.VerifyPaymentInput{OrderID: "123456"})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	assert.Contains(t, apperrors.FieldsOf(err), "signature")
}
