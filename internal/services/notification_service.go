package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storefront/internal/apperrors"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/mailer"
)

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// BroadcastQueue hands broadcast jobs to a worker, usually over RabbitMQ.
type BroadcastQueue interface {
	PublishBroadcast(ctx context.Context, job any) error
}

// BroadcastJob is the queued form of a broadcast request.
type BroadcastJob struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

// BroadcastReport summarizes one fan-out.
type BroadcastReport struct {
	Recipients int `json:"recipients"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
}

type NotificationOptions struct {
	MailTimeout time.Duration
	Concurrency int
	PageSize    int
}

// NotificationService sends transactional and broadcast mail.
type NotificationService struct {
	mailer  Mailer
	users   repositories.UserRepository
	queue   BroadcastQueue
	opts    NotificationOptions
	metrics *metrics.Metrics
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewNotificationService creates a new NotificationService. queue may be nil,
// in which case broadcasts run on a background goroutine.
func NewNotificationService(m Mailer, users repositories.UserRepository, queue BroadcastQueue, opts NotificationOptions, mt *metrics.Metrics, logger *zap.Logger) *NotificationService {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 200
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		mailer:  m,
		users:   users,
		queue:   queue,
		opts:    opts,
		metrics: mt,
		logger:  logger,
	}
}

// SendOrderConfirmation mails the order summary to the customer. The error is
// for reporting only; the order stands either way.
func (s *NotificationService) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	html, err := render(orderConfirmationTmpl, map[string]any{
		"Name":          order.Name,
		"OrderID":       order.OrderID,
		"TrackingID":    order.TrackingID,
		"Date":          order.OrderDate,
		"Time":          order.OrderTime,
		"PaymentStatus": order.PaymentStatus,
		"PaymentMethod": order.PaymentMethod,
		"Price":         order.Price,
		"Address":       order.Address,
		"ProductIDs":    order.ProductIDs,
	})
	if err != nil {
		return apperrors.Internal(err, "failed to render order confirmation")
	}
	return s.send(ctx, "transactional", mailer.Message{
		To:      order.Email,
		Subject: fmt.Sprintf("Order Confirmation #%s", order.OrderID),
		HTML:    html,
	})
}

// SendOTP mails a verification code.
func (s *NotificationService) SendOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	html, err := render(otpTmpl, map[string]any{"Code": code, "TTL": ttl.String()})
	if err != nil {
		return apperrors.Internal(err, "failed to render verification mail")
	}
	return s.send(ctx, "transactional", mailer.Message{To: email, Subject: "Verification OTP", HTML: html})
}

func (s *NotificationService) send(ctx context.Context, kind string, msg mailer.Message) error {
	ctx, cancel := withTimeout(ctx, s.opts.MailTimeout)
	defer cancel()
	err := s.mailer.Send(ctx, msg)
	s.metrics.Notification(kind, err == nil)
	if err != nil {
		return apperrors.ExternalService(err, "failed to send mail to %s", msg.To)
	}
	return nil
}

// Broadcast mails every user, paging through the user store. A failed
// recipient is counted and skipped.
func (s *NotificationService) Broadcast(ctx context.Context, job BroadcastJob) (BroadcastReport, error) {
	if err := validateStruct(job); err != nil {
		return BroadcastReport{}, err
	}
	start := time.Now()
	defer func() { s.metrics.BroadcastDuration(time.Since(start).Seconds()) }()

	var (
		recipients   int
		sent, failed atomic.Int64
		after        string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for {
		users, err := s.users.ListPage(ctx, after, s.opts.PageSize)
		if err != nil {
			// Let in-flight sends finish before reporting.
			_ = g.Wait()
			report := BroadcastReport{Recipients: recipients, Sent: int(sent.Load()), Failed: int(failed.Load())}
			return report, storeError(err, "failed to list broadcast recipients")
		}
		for _, u := range users {
			recipients++
			u := u
			g.Go(func() error {
				html, err := render(broadcastTmpl, map[string]any{"Name": u.Name, "Message": job.Message})
				if err == nil {
					err = s.send(gctx, "broadcast", mailer.Message{To: u.Email, Subject: job.Subject, HTML: html})
				}
				if err != nil {
					failed.Add(1)
					s.logger.Warn("broadcast delivery failed", zap.String("userId", u.ID), zap.Error(err))
					return nil
				}
				sent.Add(1)
				return nil
			})
		}
		if len(users) < s.opts.PageSize {
			break
		}
		after = users[len(users)-1].ID
	}
	_ = g.Wait()

	report := BroadcastReport{Recipients: recipients, Sent: int(sent.Load()), Failed: int(failed.Load())}
	s.logger.Info("broadcast finished",
		zap.String("subject", job.Subject),
		zap.Int("recipients", report.Recipients),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// QueueBroadcast schedules a broadcast without waiting for it. It only fails
// when the job itself is invalid.
func (s *NotificationService) QueueBroadcast(ctx context.Context, job BroadcastJob) error {
	if err := validateStruct(job); err != nil {
		return err
	}
	if s.queue != nil {
		err := s.queue.PublishBroadcast(ctx, job)
		if err == nil {
			return nil
		}
		s.logger.Warn("failed to queue broadcast, running in process", zap.Error(err))
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.Broadcast(context.Background(), job); err != nil {
			s.logger.Error("background broadcast failed", zap.Error(err))
		}
	}()
	return nil
}

// HandleBroadcastJob runs a job delivered by the queue consumer.
func (s *NotificationService) HandleBroadcastJob(ctx context.Context, body []byte) error {
	var job BroadcastJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("invalid broadcast job: %w", err)
	}
	_, err := s.Broadcast(ctx, job)
	return err
}

// Wait blocks until background broadcasts have finished.
func (s *NotificationService) Wait() {
	s.wg.Wait()
}
