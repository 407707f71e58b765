package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/apperrors"
	"storefront/internal/models"
	"storefront/internal/repositories"
)

const notAvailable = "Not Available"

// OTPSender mails a verification code.
type OTPSender interface {
	SendOTP(ctx context.Context, email, code string, ttl time.Duration) error
}

type SellerSignupInput struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=20"`
	EmailID     string `json:"emailId" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
}

type VerifyOTPInput struct {
	EmailID string `json:"emailId" validate:"required,email"`
	OTP     string `json:"otp" validate:"required"`
}

// SellerService onboards sellers: signup, email OTP verification and seller
// id checks.
type SellerService struct {
	sellers repositories.SellerRepository
	codes   repositories.OneTimeCodeRepository
	sender  OTPSender
	ids     *IDAllocator
	otpTTL  time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewSellerService creates a new SellerService.
func NewSellerService(sellers repositories.SellerRepository, codes repositories.OneTimeCodeRepository, sender OTPSender, ids *IDAllocator, otpTTL, timeout time.Duration, logger *zap.Logger) *SellerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SellerService{
		sellers: sellers,
		codes:   codes,
		sender:  sender,
		ids:     ids,
		otpTTL:  otpTTL,
		timeout: timeout,
		now:     time.Now,
		logger:  logger,
	}
}

// Signup registers a seller under a new MBSLR code.
func (s *SellerService) Signup(ctx context.Context, in SellerSignupInput) (*models.Seller, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.sellers.GetByEmail(ctx, in.EmailID); err == nil {
		return nil, apperrors.Conflict(nil, "Seller already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storeError(err, "failed to look up seller")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to hash password")
	}
	seller := &models.Seller{
		Name:            notAvailable,
		Email:           in.EmailID,
		PhoneNumber:     in.PhoneNumber,
		Password:        string(hashed),
		BusinessName:    notAvailable,
		BusinessAddress: notAvailable,
		BusinessType:    notAvailable,
	}
	_, err = s.ids.Allocate(ctx, SellerCodes, func(ctx context.Context, code string) error {
		seller.ID = 0
		seller.SellerID = code
		err := s.sellers.Create(ctx, seller)
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// The email index can clash too; that is not worth a redraw.
			if _, lookupErr := s.sellers.GetByEmail(ctx, in.EmailID); lookupErr == nil {
				return apperrors.Conflict(err, "Seller already exists")
			}
		}
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to register seller")
	}
	s.logger.Info("seller registered", zap.String("sellerId", seller.SellerID))
	return seller, nil
}

// SendOTP stores a fresh code for the seller's email and mails it. A new code
// replaces any earlier one.
func (s *SellerService) SendOTP(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.Validation("emailId is required", map[string]string{"emailId": "required"})
	}
	storeCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.sellers.GetByEmail(storeCtx, email); err != nil {
		return storeError(err, "No seller found with email: %s", email)
	}
	code, err := s.ids.Draw(OTPCodes)
	if err != nil {
		return apperrors.Internal(err, "failed to generate OTP")
	}
	otp := &models.OneTimeCode{
		Purpose:   models.OTPPurposeSellerVerification,
		Subject:   email,
		Code:      code,
		ExpiresAt: s.now().Add(s.otpTTL),
		CreatedAt: s.now(),
	}
	if err := s.codes.Put(storeCtx, otp); err != nil {
		return storeError(err, "failed to store OTP")
	}
	if s.sender == nil {
		return nil
	}
	return s.sender.SendOTP(ctx, email, code, s.otpTTL)
}

// VerifyOTP checks the code and marks the seller's email and phone verified.
// A used or expired code is deleted.
func (s *SellerService) VerifyOTP(ctx context.Context, in VerifyOTPInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.sellers.GetByEmail(ctx, in.EmailID); err != nil {
		return storeError(err, "No seller found with email: %s", in.EmailID)
	}
	stored, err := s.codes.Get(ctx, models.OTPPurposeSellerVerification, in.EmailID)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Validation("No OTP found", map[string]string{"otp": "OTP was not generated or has expired"})
	}
	if err != nil {
		return storeError(err, "failed to load OTP")
	}
	if stored.Expired(s.now()) {
		if err := s.codes.Delete(ctx, stored.Purpose, stored.Subject); err != nil {
			s.logger.Warn("failed to delete expired OTP", zap.Error(err))
		}
		return apperrors.Validation("No OTP found", map[string]string{"otp": "OTP was not generated or has expired"})
	}
	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(in.OTP)) != 1 {
		return apperrors.Validation("Invalid OTP", map[string]string{"otp": "The provided OTP does not match"})
	}
	if err := s.sellers.MarkVerified(ctx, in.EmailID); err != nil {
		return storeError(err, "failed to verify seller")
	}
	if err := s.codes.Delete(ctx, stored.Purpose, stored.Subject); err != nil {
		s.logger.Warn("failed to delete used OTP", zap.Error(err))
	}
	return nil
}

// VerifySeller reports whether sellerID belongs to a registered seller.
func (s *SellerService) VerifySeller(ctx context.Context, sellerID string) (*models.Seller, error) {
	if sellerID == "" {
		return nil, apperrors.Validation("Seller ID is required", map[string]string{"sellerId": "required"})
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	seller, err := s.sellers.GetBySellerID(ctx, sellerID)
	if err != nil {
		return nil, storeError(err, "Invalid seller ID")
	}
	return seller, nil
}
