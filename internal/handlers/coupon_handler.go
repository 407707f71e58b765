package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type CouponHandler struct {
	couponService *services.CouponService
}

func NewCouponHandler(couponService *services.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

func (h *CouponHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/coupons", h.HandleList)
	router.Post("/coupons/verify", h.HandleVerify)
}

func (h *CouponHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/coupons", h.HandleSave)
	admin.Delete("/coupons/:code", h.HandleDelete)
}

func (h *CouponHandler) HandleList(c *fiber.Ctx) error {
	coupons, err := h.couponService.List(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Coupons retrieved successfully", fiber.Map{"coupons": coupons})
}

func (h *CouponHandler) HandleVerify(c *fiber.Ctx) error {
	var in struct {
		Code string `json:"code"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	coupon, err := h.couponService.Verify(c.UserContext(), in.Code)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Coupon is valid", fiber.Map{
		"discountPercentage": coupon.DiscountPercentage,
	})
}

// HandleSave answers once the coupon is stored; the announcement mail goes
// out in the background.
func (h *CouponHandler) HandleSave(c *fiber.Ctx) error {
	var in services.CouponInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	coupon, err := h.couponService.Save(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, "Coupon saved successfully", fiber.Map{"coupon": coupon})
}

func (h *CouponHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.couponService.Delete(c.UserContext(), c.Params("code")); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Coupon deleted successfully", nil)
}
