package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

const testJWTSecret = "test_jwt_secret"

func TestAuthService_RegisterUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil).Once()
	user, err := authService.RegisterUser(ctx, services.RegisterInput{Name: "Test User", Email: "Test@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Email already registered
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(fmt.Errorf("failed to create user: %w", repositories.ErrDuplicateKey)).Once()
	_, err = authService.RegisterUser(ctx, services.RegisterInput{Name: "Test User", Email: "test@example.com", Password: "password123"})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	assert.Contains(t, apperrors.Message(err), "email 'test@example.com' already registered")
	mockRepo.AssertExpectations(t)

	// Invalid input never reaches the repository
	_, err = authService.RegisterUser(ctx, services.RegisterInput{Name: "T", Email: "nope", Password: "1"})
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_LoginUser(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, zap.NewNop())
	ctx := context.Background()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:       "user-123",
		Email:    "test@example.com",
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	mockRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()
	token, err := authService.LoginUser(ctx, "test@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, user.ID, claims["user_id"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
	mockRepo.AssertExpectations(t)

	// Wrong password
	mockRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()
	_, err = authService.LoginUser(ctx, "test@example.com", "wrongpassword")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
	mockRepo.AssertExpectations(t)

	// Unknown user gets the same answer
	mockRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, fmt.Errorf("lookup: %w", repositories.ErrNotFound)).Once()
	_, err = authService.LoginUser(ctx, "nobody@example.com", "password123")
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
	assert.Equal(t, "invalid credentials", apperrors.Message(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour, zap.NewNop())
	ctx := context.Background()

	mockRepo.On("GetByEmail", mock.Anything, "admin@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Role == models.RoleAdmin && u.Email == "admin@example.com"
	})).Return(nil).Once()
	require.NoError(t, authService.EnsureAdmin(ctx, "Admin", "admin@example.com", "adminpass"))

	mockRepo.On("GetByEmail", mock.Anything, "admin@example.com").Return(&models.User{ID: "a1"}, nil).Once()
	require.NoError(t, authService.EnsureAdmin(ctx, "Admin", "admin@example.com", "adminpass"))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken(t *testing.T) {
	authService := services.NewAuthService(new(MockUserRepository), testJWTSecret, time.Hour, zap.NewNop())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"role":    "customer",
		"exp":     jwt.TimeFunc().Add(time.Hour).Unix(),
	})
	validTokenString, _ := token.SignedString([]byte(testJWTSecret))

	claims, err := authService.ValidateToken(validTokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims["user_id"])

	_, err = authService.ValidateToken("invalid.token.string")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")

	expiredToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "user-123",
		"exp":     jwt.TimeFunc().Add(-time.Hour).Unix(),
	})
	expiredTokenString, _ := expiredToken.SignedString([]byte(testJWTSecret))
	_, err = authService.ValidateToken(expiredTokenString)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}
