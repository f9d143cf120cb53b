package model

import (
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Order lifecycle notifications. Consumers (mail, analytics, fulfilment) live
// outside this module; publishing is fire-and-forget.

type OrderCreatedEvent struct {
	BaseEvent
	UserID    int               `json:"user_id"`
	OrderID   string            `json:"order_id"`
	OrderDate time.Time         `json:"order_date"`
	Items     []model.OrderItem `json:"items"`
	Amount    decimal.Decimal   `json:"amount"`
}

func (e *OrderCreatedEvent) Type() EventType {
	return OrderCreatedEventName
}

type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    string            `json:"order_id"`
	FromStatus model.OrderStatus `json:"from_status"`
	ToStatus   model.OrderStatus `json:"to_status"`
}

func (e *OrderStatusChangedEvent) Type() EventType {
	return OrderStatusChangedEventName
}

type OrderCancelledEvent struct {
	BaseEvent
	OrderID    string            `json:"order_id"`
	FromStatus model.OrderStatus `json:"from_status"`
	Items      []model.OrderItem `json:"items"`
}

func (e *OrderCancelledEvent) Type() EventType {
	return OrderCancelledEventName
}
