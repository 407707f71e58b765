package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/mailer"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListPage(ctx context.Context, afterID string, limit int) ([]models.User, error) {
	args := m.Called(ctx, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// MockOrderNotifier is a mock implementation of services.OrderNotifier
type MockOrderNotifier struct {
	mock.Mock
}

func (m *MockOrderNotifier) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(ctx context.Context, eventType string, payload any) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}

// recordingMailer collects sent messages and fails for listed recipients.
type recordingMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	failFor map[string]bool
	delay   time.Duration
}

func (r *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[msg.To] {
		return assertErr("mailbox unavailable")
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingMailer) messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.sent...)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUsers(t *testing.T, repo repositories.UserRepository, users ...models.User) {
	t.Helper()
	for i := range users {
		require.NoError(t, repo.Create(context.Background(), &users[i]))
	}
}
