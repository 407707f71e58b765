package models

import "time"

type Coupon struct {
	ID                 uint      `gorm:"primaryKey" json:"-"`
	Code               string    `gorm:"uniqueIndex;type:varchar(32);not null" json:"code" validate:"required,alphanum,min=3,max=32"`
	DiscountPercentage int       `gorm:"not null" json:"discountPercentage" validate:"gte=1,lte=100"`
	CreatedAt          time.Time `json:"createdAt"`
}
