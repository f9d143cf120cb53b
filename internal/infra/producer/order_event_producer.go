package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	evt_model "github.com/RoyceAzure/lab/bookstore/internal/domain/model/event"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/message"
	"github.com/RoyceAzure/lab/rj_kafka/kafka/producer"
	"github.com/google/uuid"
)

// 訂單事件發送
// topic: 由producer創建時設置
// key: orderID 同一筆訂單的事件會落在同一分區，保持順序
type OrderEventProducer struct {
	producer producer.Producer
}

type IOrderEventProducer interface {
	ProduceOrderCreated(ctx context.Context, order *model.Order) error
	ProduceOrderStatusChanged(ctx context.Context, orderID string, from, to model.OrderStatus) error
	ProduceOrderCancelled(ctx context.Context, order *model.Order, from model.OrderStatus) error
}

func NewOrderEventProducer(p producer.Producer) *OrderEventProducer {
	if p == nil {
		panic("OrderEventProducer dependency producer is nil")
	}
	return &OrderEventProducer{producer: p}
}

func (c *OrderEventProducer) ProduceOrderCreated(ctx context.Context, order *model.Order) error {
	event := evt_model.OrderCreatedEvent{
		BaseEvent: newBaseEvent(order.OrderID, evt_model.OrderCreatedEventName),
		UserID:    order.UserID,
		OrderID:   order.OrderID,
		OrderDate: order.OrderDate,
		Items:     order.OrderItems,
		Amount:    order.Amount,
	}

	msg, err := c.convertToMessage(order.OrderID, &event)
	if err != nil {
		return err
	}

	return c.producer.Produce(ctx, []message.Message{msg})
}

func (c *OrderEventProducer) ProduceOrderStatusChanged(ctx context.Context, orderID string, from, to model.OrderStatus) error {
	event := evt_model.OrderStatusChangedEvent{
		BaseEvent:  newBaseEvent(orderID, evt_model.OrderStatusChangedEventName),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
	}

	msg, err := c.convertToMessage(orderID, &event)
	if err != nil {
		return err
	}

	return c.producer.Produce(ctx, []message.Message{msg})
}

func (c *OrderEventProducer) ProduceOrderCancelled(ctx context.Context, order *model.Order, from model.OrderStatus) error {
	event := evt_model.OrderCancelledEvent{
		BaseEvent:  newBaseEvent(order.OrderID, evt_model.OrderCancelledEventName),
		OrderID:    order.OrderID,
		FromStatus: from,
		Items:      order.OrderItems,
	}

	msg, err := c.convertToMessage(order.OrderID, &event)
	if err != nil {
		return err
	}

	return c.producer.Produce(ctx, []message.Message{msg})
}

func newBaseEvent(aggregateID string, eventType evt_model.EventType) evt_model.BaseEvent {
	return evt_model.BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		CreatedAt:   time.Now().UTC(),
		EventType:   eventType,
	}
}

func (c *OrderEventProducer) convertToMessage(orderID string, evt evt_model.Event) (message.Message, error) {
	evtValue, err := json.Marshal(evt)
	if err != nil {
		return message.Message{}, err
	}

	msg := message.Message{
		Key:   []byte(orderID),
		Value: evtValue,
		Headers: []message.Header{
			{
				Key:   "event_type",
				Value: []byte(evt.Type()),
			},
		},
	}

	return msg, nil
}

var _ IOrderEventProducer = (*OrderEventProducer)(nil)
