package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
)

type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error
	UpdateOrderStatusFrom(ctx context.Context, orderID string, from []model.OrderStatus, to model.OrderStatus) (bool, error)
}

// 購物車階段只存在redis, 結帳後訂單與訂單項目一起寫入db
type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// CreateOrder writes the order header and all its items in one transaction.
// Either the whole order becomes durable or none of it does.
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (s *OrderRepo) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderRepo) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").Where("user_id = ?", userID).Find(&orders).Error
	return orders, err
}

func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	result := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateOrderStatusFrom flips the status only when the current status is one
// of from. The returned bool reports whether this call performed the flip, so
// a transition that must run exactly once (cancellation releasing stock) can
// tell a win from a lost race.
func (s *OrderRepo) UpdateOrderStatusFrom(ctx context.Context, orderID string, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status IN ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

var _ IOrderRepository = (*OrderRepo)(nil)
