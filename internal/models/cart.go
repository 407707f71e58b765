package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CurrentCartSchema marks rows whose items are stored in the canonical
// {productId, quantity} shape. Older rows may hold bare product identifiers.
const CurrentCartSchema = 2

// CartItem is one product line of a cart.
type CartItem struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// decodeStoredItem reads one stored line. Besides the canonical object it
// accepts the legacy object shape using "productQty" and a bare product
// identifier string. A missing quantity defaults to 1. Request bodies decode
// CartItem directly and get none of this leniency.
func decodeStoredItem(data []byte) (CartItem, error) {
	var productID string
	if err := json.Unmarshal(data, &productID); err == nil {
		return CartItem{ProductID: productID, Quantity: 1}, nil
	}

	var raw struct {
		ProductID  string `json:"productId"`
		Quantity   *int   `json:"quantity"`
		ProductQty *int   `json:"productQty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return CartItem{}, fmt.Errorf("invalid cart item: %w", err)
	}
	item := CartItem{ProductID: raw.ProductID, Quantity: 1}
	switch {
	case raw.Quantity != nil:
		item.Quantity = *raw.Quantity
	case raw.ProductQty != nil:
		item.Quantity = *raw.ProductQty
	}
	return item, nil
}

// CartItems is the ordered line-item list, persisted as a JSON array.
type CartItems []CartItem

// UnmarshalJSON decodes a stored item list in any historical shape and drops
// null entries left behind by older clients.
func (ci *CartItems) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid cart items: %w", err)
	}
	items := make(CartItems, 0, len(raw))
	for _, r := range raw {
		if bytes.Equal(bytes.TrimSpace(r), []byte("null")) {
			continue
		}
		item, err := decodeStoredItem(r)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	*ci = items
	return nil
}

func (ci CartItems) Value() (driver.Value, error) {
	if ci == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]CartItem(ci))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (ci *CartItems) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*ci = CartItems{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into CartItems", src)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		*ci = CartItems{}
		return nil
	}
	return json.Unmarshal(data, ci)
}

// Cart is the single mutable cart owned by a user.
type Cart struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	CartID        string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"cartId"`
	UserID        string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"userId"`
	Items         CartItems `gorm:"type:text;not null" json:"items"`
	Version       int       `gorm:"not null;default:1" json:"version"`
	SchemaVersion int       `gorm:"not null;default:1" json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Merge applies incoming lines on top of the stored ones. An existing product
// has its quantity overwritten, not increased; a new product is appended.
// Stored order is kept and duplicate product ids collapse to the last value.
func (c *Cart) Merge(incoming []CartItem) {
	merged := make(CartItems, 0, len(c.Items)+len(incoming))
	index := make(map[string]int, len(c.Items)+len(incoming))

	put := func(item CartItem) {
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity = item.Quantity
			return
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	for _, item := range c.Items {
		put(item)
	}
	for _, item := range incoming {
		put(item)
	}
	c.Items = merged
}

// SetQuantity overwrites the quantity of an existing line. It reports false
// when the product is not in the cart.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Remove drops the line for productID and reports whether it was present.
func (c *Cart) Remove(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Quantity returns the quantity stored for productID, or 0.
func (c *Cart) Quantity(productID string) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}
