package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

func setup(t *testing.T) (*fiber.App, *services.AuthService) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	auth := services.NewAuthService(repositories.NewGORMUserRepository(db), "test-secret", time.Hour, zap.NewNop())

	app := fiber.New()
	app.Use(requestid.New(), middleware.RequestLogger(zap.NewNop()))
	protected := app.Group("/admin", middleware.AuthRequired(auth, zap.NewNop()), middleware.AdminRequired())
	protected.Get("/ping", func(c *fiber.Ctx) error {
		assert.NotNil(t, logging.FromContext(c.UserContext(), nil))
		return c.SendString("pong")
	})
	return app, auth
}

func TestAdminRoutes(t *testing.T) {
	app, auth := setup(t)

	admin, err := auth.IssueToken(&models.User{ID: "a1", Email: "admin@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)
	customer, err := auth.IssueToken(&models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleCustomer})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Token " + admin, fiber.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", fiber.StatusUnauthorized},
		{"customer role", "Bearer " + customer, fiber.StatusForbidden},
		{"admin role", "Bearer " + admin, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
