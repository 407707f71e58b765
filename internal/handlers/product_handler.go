package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

// ProductHandler serves the catalog.
type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// RegisterRoutes registers the public catalog routes. Hidden products are
// not listed here.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productGroup := router.Group("/products")
	productGroup.Get("/", h.HandleList(false))
	productGroup.Get("/:productId", h.HandleGet)
}

func (h *ProductHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/products", h.HandleList(true))
	admin.Post("/products", h.HandleCreate)
	admin.Post("/products/assign-ids", h.HandleAssignIDs)
	admin.Put("/products/:productId/stock", h.HandleUpdateStock)
	admin.Put("/products/:productId/visibility", h.HandleUpdateVisibility)
}

func (h *ProductHandler) HandleList(includeHidden bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		products, err := h.productService.List(c.UserContext(), includeHidden)
		if err != nil {
			return err
		}
		return ok(c, fiber.StatusOK, "Products retrieved successfully", fiber.Map{"products": products})
	}
}

func (h *ProductHandler) HandleGet(c *fiber.Ctx) error {
	product, err := h.productService.Get(c.UserContext(), c.Params("productId"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Product retrieved successfully", fiber.Map{"product": product})
}

func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	var in services.CreateProductInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.productService.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, "Product created successfully", fiber.Map{"product": product})
}

func (h *ProductHandler) HandleAssignIDs(c *fiber.Ctx) error {
	assigned, err := h.productService.AssignProductIDs(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Product ids assigned", fiber.Map{"assigned": assigned})
}

func (h *ProductHandler) HandleUpdateStock(c *fiber.Ctx) error {
	var in services.UpdateStockInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.productService.UpdateStock(c.UserContext(), c.Params("productId"), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Stock updated", fiber.Map{"product": product})
}

func (h *ProductHandler) HandleUpdateVisibility(c *fiber.Ctx) error {
	var in struct {
		Visibility bool `json:"visibility"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	product, err := h.productService.UpdateVisibility(c.UserContext(), c.Params("productId"), in.Visibility)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Visibility updated", fiber.Map{"product": product})
}
