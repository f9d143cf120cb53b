package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_repo"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// CartService owns the cart write path before checkout. It never touches
// stock; carts may reference more units than are on hand and checkout is
// where that gets settled.
type CartService struct {
	cartRepo redis_repo.ICartRepository
	catalog  db.IBookRepository
}

func NewCartService(cartRepo redis_repo.ICartRepository, catalog db.IBookRepository) *CartService {
	if cartRepo == nil {
		panic("CartService dependency cartRepo is nil")
	}
	if catalog == nil {
		panic("CartService dependency catalog is nil")
	}
	return &CartService{cartRepo: cartRepo, catalog: catalog}
}

func (s *CartService) GetCart(ctx context.Context, userID int) (*model.Cart, error) {
	return s.cartRepo.Get(ctx, userID)
}

// AddItem adds quantity of a book to the cart. The book must exist in the
// catalog; its stock is not checked here.
func (s *CartService) AddItem(ctx context.Context, userID int, bookID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if _, err := s.catalog.GetBookByID(ctx, bookID); err != nil {
		return err
	}
	return s.cartRepo.Add(ctx, userID, bookID, quantity)
}

// RemoveItem decreases quantity; the line disappears when it reaches zero.
func (s *CartService) RemoveItem(ctx context.Context, userID int, bookID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.cartRepo.Add(ctx, userID, bookID, -quantity)
}

func (s *CartService) DeleteItem(ctx context.Context, userID int, bookID string) error {
	return s.cartRepo.Delete(ctx, userID, bookID)
}

func (s *CartService) ClearCart(ctx context.Context, userID int) error {
	return s.cartRepo.Clear(ctx, userID)
}
