package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterAdminRoutes(admin fiber.Router) {
	admin.Post("/notifications/broadcast", h.HandleBroadcast)
}

// HandleBroadcast mails every user and reports the outcome. With ?async=true
// the job is queued and the call answers 202 without a report.
func (h *NotificationHandler) HandleBroadcast(c *fiber.Ctx) error {
	var job services.BroadcastJob
	if err := parseBody(c, &job); err != nil {
		return err
	}
	if c.QueryBool("async") {
		if err := h.notificationService.QueueBroadcast(c.UserContext(), job); err != nil {
			return err
		}
		return ok(c, fiber.StatusAccepted, "Broadcast queued", nil)
	}
	report, err := h.notificationService.Broadcast(c.UserContext(), job)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Broadcast finished", fiber.Map{"report": report})
}
