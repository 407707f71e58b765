package models

import "time"

const OTPPurposeSellerVerification = "seller_verification"

// OneTimeCode is a short-lived verification code. At most one live code exists
// per (purpose, subject); expiry is checked on read.
type OneTimeCode struct {
	ID        uint      `gorm:"primaryKey"`
	Purpose   string    `gorm:"uniqueIndex:idx_one_time_code_subject;type:varchar(32);not null"`
	Subject   string    `gorm:"uniqueIndex:idx_one_time_code_subject;type:varchar(255);not null"`
	Code      string    `gorm:"type:varchar(16);not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// Expired reports whether the code is no longer usable at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
