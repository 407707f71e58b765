package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a shopper or administrator account.
type User struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Email         string    `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	Password      string    `gorm:"type:varchar(255);not null" json:"-"`
	Role          string    `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	AccountStatus string    `gorm:"type:varchar(20);not null;default:'active'" json:"accountStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
