package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/pkg/mailer"
	"storefront/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}

	log, err := logging.NewLogger(cfg.App.Name, cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	couponRepo := repositories.NewGORMCouponRepository(db)
	sellerRepo := repositories.NewGORMSellerRepository(db)
	codeRepo := repositories.NewGORMOneTimeCodeRepository(db)

	health := fiber.Map{"database": "connected"}

	// --- Optional collaborators ---
	var userCache repositories.UserCache
	if cfg.Redis.Addr != "" {
		cache := repositories.NewRedisUserCache(cfg.Redis)
		if err := cache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, user cache disabled", zap.Error(err))
			_ = cache.Close()
			health["redis"] = "unavailable"
		} else {
			defer cache.Close()
			userCache = cache
			health["redis"] = "connected"
		}
	}

	var auditLog repositories.AuditLog
	if cfg.MongoDB.URI != "" {
		audit, err := repositories.NewMongoAuditLog(ctx, cfg.MongoDB)
		if err != nil {
			log.Warn("mongodb unavailable, audit log disabled", zap.Error(err))
			health["mongodb"] = "unavailable"
		} else {
			defer func() { _ = audit.Close(context.Background()) }()
			auditLog = audit
			health["mongodb"] = "connected"
		}
	}

	var (
		mqClient *rabbitmq.Client
		events   services.EventPublisher
		queue    services.BroadcastQueue
	)
	if cfg.RabbitMQ.Enabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, events disabled and broadcasts run in process", zap.Error(err))
			health["rabbitmq"] = "unavailable"
		} else {
			defer mqClient.Close()
			events, queue = mqClient, mqClient
			health["rabbitmq"] = "connected"
		}
	}

	var mail services.Mailer
	if cfg.Mail.Host != "" {
		mail = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
		})
	} else {
		log.Warn("mail.host not set, outgoing mail is only logged")
		mail = mailer.NewLogMailer(log)
	}

	// --- Services ---
	m := metrics.New()
	ids := services.NewIDAllocator(nil, cfg.IDs.MaxAttempts, m, log)

	notifications := services.NewNotificationService(mail, userRepo, queue, services.NotificationOptions{
		MailTimeout: cfg.Timeouts.Mail,
		Concurrency: cfg.Notifications.BroadcastConcurrency,
		PageSize:    cfg.Notifications.PageSize,
	}, m, log)

	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, log)
	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, "Administrator", cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return err
		}
	}

	svc := server.Services{
		Auth:  authService,
		Carts: services.NewCartService(cartRepo, cfg.Timeouts.Store, m, log),
		Orders: services.NewOrderService(services.OrderServiceDeps{
			Orders:    orderRepo,
			Users:     userRepo,
			Products:  productRepo,
			UserCache: userCache,
			Audit:     auditLog,
			Events:    events,
			Notifier:  notifications,
			IDs:       ids,
			Timeout:   cfg.Timeouts.Store,
			Metrics:   m,
			Logger:    log,
		}),
		Payments:      services.NewPaymentService(cfg.Payment.Secret, m, log),
		Products:      services.NewProductService(productRepo, ids, cfg.Timeouts.Store, log),
		Coupons:       services.NewCouponService(couponRepo, notifications, cfg.Timeouts.Store, log),
		Sellers:       services.NewSellerService(sellerRepo, codeRepo, notifications, ids, cfg.OTP.TTL, cfg.Timeouts.Store, log),
		Notifications: notifications,
	}
	if cfg.Payment.Secret == "" {
		log.Warn("payment.secret not set, every payment signature will be rejected")
	}

	if mqClient != nil {
		if err := mqClient.ConsumeBroadcasts(ctx, notifications.HandleBroadcastJob); err != nil {
			log.Error("failed to start broadcast consumer", zap.Error(err))
		}
	}

	app := server.New(svc, m, server.Options{
		ExposeErrors: !cfg.App.IsProduction(),
		AccessLog:    !cfg.App.IsProduction(),
		Health:       func() fiber.Map { return health },
	}, log)

	// --- HTTP ---
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		errCh <- app.Listen(cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	notifications.Wait()
	log.Info("server gracefully stopped")
	return nil
}
