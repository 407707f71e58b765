package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

// OrderHandler handles HTTP requests related to orders.
type OrderHandler struct {
	orderService *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers the public order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderGroup := router.Group("/orders")
	orderGroup.Post("/", h.HandlePlaceOrder)
	orderGroup.Post("/find", h.HandleFindUserOrders)
	orderGroup.Get("/track/:trackingId", h.HandleTrackOrder)
	orderGroup.Get("/:orderId", h.HandleGetOrder)
}

// RegisterAdminRoutes registers the order routes that require the admin role.
func (h *OrderHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Get("/orders", h.HandleListAll)
	admin.Patch("/orders/:orderId/status", h.HandleUpdateStatus)
	admin.Get("/orders/:orderId/audit", h.HandleAuditTrail)
}

// HandlePlaceOrder answers 201 with the allocated identifiers. When the order
// is stored but the confirmation mail fails, notificationSent is false and
// the message says so.
func (h *OrderHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var in services.PlaceOrderInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	result, err := h.orderService.PlaceOrder(c.UserContext(), in)
	if err != nil {
		return err
	}
	message := "Order placed successfully"
	if !result.NotificationSent {
		message = "Order placed successfully, but the confirmation email could not be sent"
	}
	return ok(c, fiber.StatusCreated, message, fiber.Map{
		"orderId":          result.OrderID,
		"trackingId":       result.TrackingID,
		"notificationSent": result.NotificationSent,
	})
}

func (h *OrderHandler) HandleFindUserOrders(c *fiber.Ctx) error {
	var in struct {
		UserID string `json:"userId"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	orders, err := h.orderService.FindUserOrders(c.UserContext(), in.UserID)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Orders retrieved successfully", fiber.Map{"orders": orders})
}

func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.orderService.GetOrder(c.UserContext(), c.Params("orderId"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Order retrieved successfully", fiber.Map{"order": order})
}

func (h *OrderHandler) HandleTrackOrder(c *fiber.Ctx) error {
	order, err := h.orderService.TrackOrder(c.UserContext(), c.Params("trackingId"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Order retrieved successfully", fiber.Map{"order": order})
}

func (h *OrderHandler) HandleListAll(c *fiber.Ctx) error {
	orders, err := h.orderService.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Orders retrieved successfully", fiber.Map{
		"orders": orders,
		"count":  len(orders),
	})
}

func (h *OrderHandler) HandleUpdateStatus(c *fiber.Ctx) error {
	var in struct {
		Status string `json:"status"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	order, err := h.orderService.UpdateStatus(c.UserContext(), c.Params("orderId"), in.Status)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Order status updated", fiber.Map{"order": order})
}

func (h *OrderHandler) HandleAuditTrail(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	entries, err := h.orderService.AuditTrail(c.UserContext(), c.Params("orderId"), int64(limit))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Audit trail retrieved", fiber.Map{"entries": entries})
}
