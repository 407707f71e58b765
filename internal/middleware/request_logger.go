package middleware

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/logging"
)

// RequestLogger attaches a logger tagged with the request id to the user
// context. It must run after the requestid middleware.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqLogger := logger.With(
			zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)),
			zap.String("method", c.Method()),
		)
		c.SetUserContext(logging.ContextWithLogger(c.UserContext(), reqLogger))
		return c.Next()
	}
}
