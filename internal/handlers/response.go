package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/apperrors"
	"storefront/internal/logging"
)

var statusByKind = map[apperrors.Kind]int{
	apperrors.KindValidation:        fiber.StatusBadRequest,
	apperrors.KindNotFound:          fiber.StatusNotFound,
	apperrors.KindConflict:          fiber.StatusConflict,
	apperrors.KindResourceExhausted: fiber.StatusConflict,
	apperrors.KindInvalidTransition: fiber.StatusConflict,
	apperrors.KindUnauthorized:      fiber.StatusUnauthorized,
	apperrors.KindExternalService:   fiber.StatusBadGateway,
	apperrors.KindPersistence:       fiber.StatusInternalServerError,
	apperrors.KindInternal:          fiber.StatusInternalServerError,
}

// ErrorHandler renders every error returned by a handler as
// {success: false, message}. Field errors go under "errors"; the underlying
// cause goes under "error" unless exposeCause is false.
func ErrorHandler(exposeCause bool, logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
		}

		kind := apperrors.KindOf(err)
		status, ok := statusByKind[kind]
		if !ok {
			status = fiber.StatusInternalServerError
		}
		body := fiber.Map{"success": false, "message": apperrors.Message(err)}
		if fields := apperrors.FieldsOf(err); len(fields) > 0 {
			body["errors"] = fields
		}
		if exposeCause {
			body["error"] = err.Error()
		}

		log := logging.FromContext(c.UserContext(), logger)
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.String("kind", string(kind)), zap.Error(err))
		} else {
			log.Debug("request rejected", zap.String("path", c.Path()), zap.String("kind", string(kind)), zap.Error(err))
		}
		return c.Status(status).JSON(body)
	}
}

// parseBody decodes the JSON body into out.
func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &apperrors.Error{Kind: apperrors.KindValidation, Message: "Invalid request body", Err: err}
	}
	return nil
}

func ok(c *fiber.Ctx, status int, message string, extra fiber.Map) error {
	body := fiber.Map{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}
