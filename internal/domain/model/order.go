package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderStatusTransitions is the full transition table. A status missing from a
// target list is not reachable from that source, so adding a new status forces
// an explicit decision here instead of an ad hoc string comparison somewhere.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// ParseOrderStatus rejects anything outside the transition table.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderStatusTransitions[status]; !ok {
		return "", &InvalidTransitionError{Requested: status}
	}
	return status, nil
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return len(orderStatusTransitions[s]) == 0
}

// ValidateTransition checks current -> requested against the table. Unknown
// requested statuses fail regardless of the current status.
func ValidateTransition(current, requested OrderStatus) error {
	if _, ok := orderStatusTransitions[requested]; !ok {
		return &InvalidTransitionError{Current: current, Requested: requested}
	}
	if !current.CanTransitionTo(requested) {
		return &InvalidTransitionError{Current: current, Requested: requested}
	}
	return nil
}

type InvalidTransitionError struct {
	Current   OrderStatus
	Requested OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("unknown order status %q", e.Requested)
	}
	return fmt.Sprintf("order status transition %s -> %s is not allowed", e.Current, e.Requested)
}

// Order is immutable after creation except for Status. Amount is derived from
// the order items and must stay equal to Total().
type Order struct {
	OrderID         string          `gorm:"primaryKey;type:varchar(255)" json:"order_id"`
	UserID          int             `gorm:"not null;index" json:"user_id"`
	ShippingAddress string          `gorm:"not null;type:varchar(255)" json:"shipping_address"`
	OrderItems      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	Amount          decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	OrderDate       time.Time       `gorm:"not null" json:"order_date"`
	Status          OrderStatus     `gorm:"not null;type:varchar(20);default:'PENDING'" json:"status"`
	BaseModel
}

// Total sums the order lines. Callers displaying an amount should use this,
// not a separately computed figure.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.OrderItems {
		total = total.Add(item.Subtotal())
	}
	return total
}

// OrderItem captures the unit price at checkout time. A later price change on
// the book must not alter historical orders.
type OrderItem struct {
	OrderID   string          `gorm:"primaryKey;type:varchar(255)" json:"order_id"`
	BookID    string          `gorm:"primaryKey;type:varchar(255)" json:"book_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"unit_price"`
	BaseModel
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
