package service

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/google/uuid"
)

// OrderAssembler builds the order aggregate from validated cart contents.
// Prices are snapshotted at assembly time: the order line keeps the unit price
// the book had at checkout, whatever happens to the catalog afterwards.
type OrderAssembler struct {
	catalog db.IBookRepository
}

func NewOrderAssembler(catalog db.IBookRepository) *OrderAssembler {
	if catalog == nil {
		panic("OrderAssembler dependency catalog is nil")
	}
	return &OrderAssembler{catalog: catalog}
}

func (a *OrderAssembler) Assemble(ctx context.Context, userID int, shippingAddress string, cart *model.Cart) (*model.Order, error) {
	order := &model.Order{
		OrderID:         uuid.NewString(),
		UserID:          userID,
		ShippingAddress: shippingAddress,
		OrderDate:       time.Now().UTC(),
		Status:          model.OrderStatusPending,
	}

	for _, item := range cart.Items {
		book, err := a.catalog.GetBookByID(ctx, item.BookID)
		if err != nil {
			return nil, err
		}
		order.OrderItems = append(order.OrderItems, model.OrderItem{
			OrderID:   order.OrderID,
			BookID:    item.BookID,
			Quantity:  item.Quantity,
			UnitPrice: book.Price,
		})
	}

	// Amount is never computed anywhere else; it is always the sum of lines.
	order.Amount = order.Total()
	return order, nil
}
