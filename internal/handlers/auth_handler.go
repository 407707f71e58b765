package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

// AuthHandler handles HTTP requests related to authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authGroup := router.Group("/auth")
	authGroup.Post("/register", h.HandleRegister)
	authGroup.Post("/login", h.HandleLogin)
}

func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	user, err := h.authService.RegisterUser(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, "User registered successfully", fiber.Map{"user": user})
}

func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &in); err != nil {
		return err
	}
	token, err := h.authService.LoginUser(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, "Login successful", fiber.Map{"token": token})
}
