package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"go.uber.org/zap"

	"storefront/internal/metrics"
)

// SignPayment returns the hex HMAC-SHA256 of "orderId|paymentId" under secret,
// the signature the payment gateway attaches to its callback.
func SignPayment(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature checks a gateway callback signature in constant
// time. The signature must be the exact lowercase hex digest. An empty secret
// never verifies.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	if secret == "" {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(SignPayment(orderID, paymentID, secret)))
}

type VerifyPaymentInput struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// PaymentService verifies payment gateway callbacks.
type PaymentService struct {
	secret  string
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(secret string, m *metrics.Metrics, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if secret == "" {
		logger.Warn("payment secret is empty, every callback will fail verification")
	}
	return &PaymentService{secret: secret, metrics: m, logger: logger}
}

func (s *PaymentService) Verify(in VerifyPaymentInput) (bool, error) {
	if err := validateStruct(in); err != nil {
		return false, err
	}
	valid := VerifyPaymentSignature(in.OrderID, in.PaymentID, in.Signature, s.secret)
	s.metrics.PaymentVerification(valid)
	if !valid {
		s.logger.Info("payment signature rejected", zap.String("orderId", in.OrderID))
	}
	return valid, nil
}

