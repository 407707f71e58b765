package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/services"
)

// CartHandler handles HTTP requests related to carts.
type CartHandler struct {
	cartService *services.CartService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// RegisterRoutes registers the public cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartGroup := router.Group("/cart")
	cartGroup.Post("/add", h.HandleAddToCart)
	cartGroup.Post("/get", h.HandleGetCart)
	cartGroup.Put("/quantity", h.HandleUpdateQuantity)
	cartGroup.Post("/remove-item", h.HandleRemoveItem)
	cartGroup.Delete("/", h.HandleDeleteCart)
}

// RegisterAdminRoutes registers the maintenance routes under an admin group.
func (h *CartHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/carts/migrate", h.HandleMigrate)
}

type cartLookupRequest struct {
	UserID    string `json:"userId"`
	CartID    string `json:"cartId"`
	ProductID string `json:"productId"`
}

func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	var in services.MergeCartInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cart, err := h.cartService.Merge(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Cart updated successfully", fiber.Map{"cart": cart})
}

// HandleGetCart looks the cart up by userId, or by cartId when no userId is given.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	var in cartLookupRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	var (
		cart *models.Cart
		err  error
	)
	switch {
	case in.UserID != "":
		cart, err = h.cartService.GetByUser(c.UserContext(), in.UserID)
	case in.CartID != "":
		cart, err = h.cartService.GetByCartID(c.UserContext(), in.CartID)
	default:
		return apperrors.Validation("userId or cartId is required", map[string]string{
			"userId": "required without cartId",
		})
	}
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Cart retrieved successfully", fiber.Map{"cart": cart})
}

func (h *CartHandler) HandleUpdateQuantity(c *fiber.Ctx) error {
	var in services.UpdateQuantityInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cart, err := h.cartService.UpdateQuantity(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Quantity updated successfully", fiber.Map{"cart": cart})
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	var in cartLookupRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	cart, err := h.cartService.RemoveItem(c.UserContext(), in.UserID, in.ProductID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Item removed from cart", fiber.Map{"cart": cart})
}

func (h *CartHandler) HandleDeleteCart(c *fiber.Ctx) error {
	var in cartLookupRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if err := h.cartService.DeleteCart(c.UserContext(), in.UserID); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Cart deleted successfully", nil)
}

func (h *CartHandler) HandleMigrate(c *fiber.Ctx) error {
	migrated, err := h.cartService.MigrateLegacyCarts(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Legacy carts migrated", fiber.Map{"migrated": migrated})
}
