package model

import "time"

type BaseEvent struct {
	EventID     string    `json:"eventId"`
	AggregateID string    `json:"aggregateId"`
	CreatedAt   time.Time `json:"createdAt"`
	EventType   EventType `json:"eventType"`
}

func (e *BaseEvent) GetID() string {
	return e.EventID
}

type EventType string

const (
	OrderCreatedEventName       EventType = "OrderCreated"
	OrderStatusChangedEventName EventType = "OrderStatusChanged"
	OrderCancelledEventName     EventType = "OrderCancelled"
)

type Event interface {
	Type() EventType
	GetID() string
}
