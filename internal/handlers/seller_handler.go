package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

// SellerHandler handles seller onboarding.
type SellerHandler struct {
	sellerService *services.SellerService
}

func NewSellerHandler(sellerService *services.SellerService) *SellerHandler {
	return &SellerHandler{sellerService: sellerService}
}

func (h *SellerHandler) RegisterRoutes(router fiber.Router) {
	sellerGroup := router.Group("/sellers")
	sellerGroup.Post("/signup", h.HandleSignup)
	sellerGroup.Post("/send-otp", h.HandleSendOTP)
	sellerGroup.Post("/verify-otp", h.HandleVerifyOTP)
	sellerGroup.Post("/verify", h.HandleVerifySeller)
}

func (h *SellerHandler) HandleSignup(c *fiber.Ctx) error {
	var in services.SellerSignupInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	seller, err := h.sellerService.Signup(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, "Seller registered successfully", fiber.Map{"sellerId": seller.SellerID})
}

func (h *SellerHandler) HandleSendOTP(c *fiber.Ctx) error {
	var in struct {
		EmailID string `json:"emailId"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.sellerService.SendOTP(c.UserContext(), in.EmailID); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "OTP sent successfully", nil)
}

func (h *SellerHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var in services.VerifyOTPInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.sellerService.VerifyOTP(c.UserContext(), in); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "OTP verified successfully", nil)
}

func (h *SellerHandler) HandleVerifySeller(c *fiber.Ctx) error {
	var in struct {
		SellerID string `json:"sellerId"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	seller, err := h.sellerService.VerifySeller(c.UserContext(), in.SellerID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Seller verified", fiber.Map{"sellerId": seller.SellerID})
}
