package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payments/verify", h.HandleVerify)
}

// HandleVerify always answers 200 for a well-formed request; the outcome is
// in "valid".
func (h *PaymentHandler) HandleVerify(c *fiber.Ctx) error {
	var in services.VerifyPaymentInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	valid, err := h.paymentService.Verify(in)
	if err != nil {
		return err
	}
	message := "Payment verified"
	if !valid {
		message = "Payment signature mismatch"
	}
	return ok(c, fiber.StatusOK, message, fiber.Map{"valid": valid})
}
