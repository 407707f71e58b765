package models

import "time"

// Product is a catalog entry. ProductID stays nil until the identifier
// generator assigns one.
type Product struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ProductID      *string   `gorm:"uniqueIndex;type:varchar(6)" json:"productId"`
	Name           string    `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Price          float64   `json:"price" validate:"gte=0"`
	Img            string    `gorm:"type:text" json:"img" validate:"omitempty,url"`
	Category       string    `gorm:"type:varchar(100);index" json:"category" validate:"omitempty,max=100"`
	Rating         float64   `json:"rating" validate:"gte=0,lte=5"`
	InStockValue   int       `gorm:"not null" json:"inStockValue" validate:"gte=0"`
	SoldStockValue int       `gorm:"not null" json:"soldStockValue" validate:"gte=0"`
	Visible        bool      `gorm:"not null" json:"visibility"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
