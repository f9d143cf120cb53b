package service

import (
	"context"
	"fmt"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/producer"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog/log"
)

type IOrderService interface {
	Checkout(ctx context.Context, userID int, shippingAddress string) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status string) (*model.Order, error)
	Cancel(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error)
}

// OrderService turns a cart into an order and walks the order through its
// lifecycle. All stock movement goes through the ledger; this service only
// decides when to move it and compensates when a later step fails.
type OrderService struct {
	orderRepo db.IOrderRepository
	cartRepo  redis_repo.ICartRepository
	validator *CartValidator
	ledger    IInventoryLedger
	assembler *OrderAssembler
	events    producer.IOrderEventProducer
}

func NewOrderService(
	orderRepo db.IOrderRepository,
	cartRepo redis_repo.ICartRepository,
	validator *CartValidator,
	ledger IInventoryLedger,
	assembler *OrderAssembler,
	events producer.IOrderEventProducer,
) *OrderService {
	if orderRepo == nil {
		panic("OrderService dependency orderRepo is nil")
	}
	if cartRepo == nil {
		panic("OrderService dependency cartRepo is nil")
	}
	if validator == nil {
		panic("OrderService dependency validator is nil")
	}
	if ledger == nil {
		panic("OrderService dependency ledger is nil")
	}
	if assembler == nil {
		panic("OrderService dependency assembler is nil")
	}
	if events == nil {
		panic("OrderService dependency events is nil")
	}

	return &OrderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		validator: validator,
		ledger:    ledger,
		assembler: assembler,
		events:    events,
	}
}

// Checkout converts the user's cart into a pending order.
//
// The cart check is advisory; the reservation batch is the authority. Once
// stock is reserved, any later failure releases it again before the error
// propagates, so reserved-but-unbilled stock cannot survive a failed
// checkout. The cart is cleared only after the order is durable.
//
// 錯誤:
//   - ErrCartEmpty: 購物車為空
//   - *CartValidationError / *model.InsufficientStockError: 庫存不足
//   - db.ErrBookNotFound: 書籍不存在
//   - err: 其他錯誤
func (s *OrderService) Checkout(ctx context.Context, userID int, shippingAddress string) (*model.Order, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrCartEmpty
	}

	if err := s.validator.Validate(ctx, cart); err != nil {
		return nil, err
	}

	lines := CartToStockLines(cart.Items)
	if err := s.ledger.ReserveAll(ctx, lines); err != nil {
		return nil, err
	}

	order, err := s.assembler.Assemble(ctx, userID, shippingAddress, cart)
	if err != nil {
		s.compensate(ctx, lines)
		return nil, fmt.Errorf("assemble order: %w", err)
	}

	if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
		s.compensate(ctx, lines)
		return nil, fmt.Errorf("persist order: %w", err)
	}

	// The order is durable from here on: a cart that fails to clear is an
	// annoyance, not an inconsistency.
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		log.Error().
			Err(err).
			Int("user_id", userID).
			Str("order_id", order.OrderID).
			Msg("cart clear after checkout failed")
	}

	if err := s.events.ProduceOrderCreated(ctx, order); err != nil {
		log.Warn().
			Err(err).
			Str("order_id", order.OrderID).
			Msg("publish OrderCreated failed")
	}

	return order, nil
}

func (s *OrderService) compensate(ctx context.Context, lines []StockLine) {
	if err := s.ledger.ReleaseAll(ctx, lines); err != nil {
		log.Error().
			Err(err).
			Msg("checkout compensation did not fully release reserved stock")
	}
}

// UpdateStatus applies one transition of the order state machine. Requesting
// CANCELLED goes through Cancel so the stock release happens exactly once.
//
// 錯誤:
//   - db.ErrOrderNotFound: 訂單不存在
//   - *model.InvalidTransitionError: 狀態轉換不合法
//   - err: 其他錯誤
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status string) (*model.Order, error) {
	requested, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	if requested == model.OrderStatusCancelled {
		if err := s.Cancel(ctx, orderID); err != nil {
			return nil, err
		}
		return s.orderRepo.GetOrderByID(ctx, orderID)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := model.ValidateTransition(order.Status, requested); err != nil {
		return nil, err
	}

	// Conditional on the status we validated against, so a concurrent
	// transition cannot sneak an illegal edge through.
	applied, err := s.orderRepo.UpdateOrderStatusFrom(ctx, orderID, []model.OrderStatus{order.Status}, requested)
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := s.orderRepo.GetOrderByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		return nil, &model.InvalidTransitionError{Current: current.Status, Requested: requested}
	}

	if err := s.events.ProduceOrderStatusChanged(ctx, orderID, order.Status, requested); err != nil {
		log.Warn().
			Err(err).
			Str("order_id", orderID).
			Msg("publish OrderStatusChanged failed")
	}

	order.Status = requested
	return order, nil
}

// Cancel transitions the order to CANCELLED and puts every line's quantity
// back in stock. Cancelling an already cancelled order is a no-op success:
// the conditional status flip decides a single winner, so stock is released
// exactly once no matter how many cancels race.
//
// 錯誤:
//   - db.ErrOrderNotFound: 訂單不存在
//   - *model.InvalidTransitionError: 已出貨或已送達
//   - err: 其他錯誤
func (s *OrderService) Cancel(ctx context.Context, orderID string) error {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status == model.OrderStatusCancelled {
		return nil
	}

	if err := model.ValidateTransition(order.Status, model.OrderStatusCancelled); err != nil {
		return err
	}

	cancellable := []model.OrderStatus{model.OrderStatusPending, model.OrderStatusProcessing}
	applied, err := s.orderRepo.UpdateOrderStatusFrom(ctx, orderID, cancellable, model.OrderStatusCancelled)
	if err != nil {
		return err
	}
	if !applied {
		// Lost the race. If the winner cancelled it, that is still a success.
		current, err := s.orderRepo.GetOrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if current.Status == model.OrderStatusCancelled {
			return nil
		}
		return &model.InvalidTransitionError{Current: current.Status, Requested: model.OrderStatusCancelled}
	}

	if err := s.ledger.ReleaseAll(ctx, OrderToStockLines(order.OrderItems)); err != nil {
		return fmt.Errorf("release stock for cancelled order %s: %w", orderID, err)
	}

	if err := s.events.ProduceOrderCancelled(ctx, order, order.Status); err != nil {
		log.Warn().
			Err(err).
			Str("order_id", orderID).
			Msg("publish OrderCancelled failed")
	}

	return nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *OrderService) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	return s.orderRepo.GetOrdersByUserID(ctx, userID)
}

var _ IOrderService = (*OrderService)(nil)
