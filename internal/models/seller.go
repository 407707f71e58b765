package models

import "time"

// Seller is a merchant account, identified by an MBSLR-prefixed code.
type Seller struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	SellerID        string    `gorm:"uniqueIndex;type:varchar(16);not null" json:"sellerId"`
	Name            string    `gorm:"type:varchar(100)" json:"name"`
	Email           string    `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	PhoneNumber     string    `gorm:"type:varchar(20)" json:"phoneNumber"`
	Password        string    `gorm:"type:varchar(255);not null" json:"-"`
	BusinessName    string    `gorm:"type:varchar(200)" json:"businessName"`
	BusinessAddress string    `gorm:"type:text" json:"businessAddress"`
	BusinessType    string    `gorm:"type:varchar(100)" json:"businessType"`
	EmailVerified   bool      `gorm:"not null" json:"emailVerified"`
	PhoneVerified   bool      `gorm:"not null" json:"phoneVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
