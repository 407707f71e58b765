// Package server assembles the fiber application from the service layer.
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/services"
)

// Services bundles everything the routes call into.
type Services struct {
	Auth          *services.AuthService
	Carts         *services.CartService
	Orders        *services.OrderService
	Payments      *services.PaymentService
	Products      *services.ProductService
	Coupons       *services.CouponService
	Sellers       *services.SellerService
	Notifications *services.NotificationService
}

type Options struct {
	// ExposeErrors adds the underlying cause to error responses.
	ExposeErrors bool
	// AccessLog enables fiber's request logger.
	AccessLog bool
	// Health reports the state of optional dependencies under /health.
	Health func() fiber.Map
}

// New builds the app with every route under /api/v1. Admin routes live
// under /api/v1/admin and need a JWT carrying the admin role.
func New(svc Services, m *metrics.Metrics, opts Options, log *zap.Logger) *fiber.App {
	if log == nil {
		log = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(opts.ExposeErrors, log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))
	if opts.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		body := fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		}
		if opts.Health != nil {
			for k, v := range opts.Health() {
				body[k] = v
			}
		}
		return c.Status(fiber.StatusOK).JSON(body)
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	apiV1 := app.Group("/api/v1")
	admin := apiV1.Group("/admin", middleware.AuthRequired(svc.Auth, log), middleware.AdminRequired())

	handlers.NewAuthHandler(svc.Auth).RegisterRoutes(apiV1)

	cartHandler := handlers.NewCartHandler(svc.Carts)
	cartHandler.RegisterRoutes(apiV1)
	cartHandler.RegisterAdminRoutes(admin)

	orderHandler := handlers.NewOrderHandler(svc.Orders)
	orderHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterAdminRoutes(admin)

	handlers.NewPaymentHandler(svc.Payments).RegisterRoutes(apiV1)

	productHandler := handlers.NewProductHandler(svc.Products)
	productHandler.RegisterRoutes(apiV1)
	productHandler.RegisterAdminRoutes(admin)

	couponHandler := handlers.NewCouponHandler(svc.Coupons)
	couponHandler.RegisterRoutes(apiV1)
	couponHandler.RegisterAdminRoutes(admin)

	handlers.NewSellerHandler(svc.Sellers).RegisterRoutes(apiV1)
	handlers.NewNotificationHandler(svc.Notifications).RegisterAdminRoutes(admin)

	return app
}
