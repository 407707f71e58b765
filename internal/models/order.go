package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OrderStatus is the fulfilment lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// orderTransitions lists the states reachable from each non-terminal state.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
}

var orderStatuses = []OrderStatus{
	OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
}

// ParseOrderStatus matches s case-insensitively against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range orderStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// CanTransitionTo reports whether moving from s to next is a forward move.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// PaymentStatus is the settlement state reported by the payment gateway.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusUnpaid   PaymentStatus = "Unpaid"
	PaymentStatusRefunded PaymentStatus = "Refunded"
	PaymentStatusPending  PaymentStatus = "Pending"
)

var paymentStatuses = []PaymentStatus{
	PaymentStatusPaid, PaymentStatusUnpaid, PaymentStatusRefunded, PaymentStatusPending,
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	for _, st := range paymentStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// PaymentMethod is how the shopper paid. Optional on an order.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "Credit Card"
	PaymentMethodDebitCard  PaymentMethod = "Debit Card"
	PaymentMethodNetBanking PaymentMethod = "Net Banking"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCOD        PaymentMethod = "COD"
)

var paymentMethods = []PaymentMethod{
	PaymentMethodCreditCard, PaymentMethodDebitCard, PaymentMethodNetBanking, PaymentMethodUPI, PaymentMethodCOD,
}

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	for _, m := range paymentMethods {
		if strings.EqualFold(string(m), s) {
			return m, true
		}
	}
	return "", false
}

// StringList is an ordered list of strings persisted as a JSON array.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = out
	return nil
}

// Order is a placed purchase. OrderID and TrackingID never change once set.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"-"`
	OrderID       string        `gorm:"uniqueIndex;type:varchar(6);not null" json:"orderId"`
	TrackingID    string        `gorm:"uniqueIndex;type:varchar(12);not null" json:"trackingId"`
	UserID        string        `gorm:"index;type:varchar(64);not null" json:"userId"`
	Name          string        `gorm:"type:varchar(100)" json:"name"`
	Email         string        `gorm:"type:varchar(255)" json:"email"`
	Address       string        `gorm:"type:text" json:"address"`
	OrderDate     string        `gorm:"column:order_date;type:varchar(32)" json:"date"`
	OrderTime     string        `gorm:"column:order_time;type:varchar(32)" json:"time"`
	ProductIDs    StringList    `gorm:"column:product_ids;type:text" json:"productIds"`
	Price         float64       `json:"price"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'Pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'Pending'" json:"paymentStatus"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20)" json:"paymentMethod,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
