package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

type CartRepoError error

var (
	ErrCartNotFound         CartRepoError = errors.New("cart not found")
	ErrInsufficientQuantity CartRepoError = errors.New("insufficient quantity")
)

// ICartRepository 購物車唯一真相來源是redis
type ICartRepository interface {
	Get(ctx context.Context, userID int) (*model.Cart, error)
	Add(ctx context.Context, userID int, bookID string, deltaQuantity int) error
	Delete(ctx context.Context, userID int, bookID string) error
	Clear(ctx context.Context, userID int) error
}

type CartRepo struct {
	cartCache *redis.Client
}

func NewCartRepo(cartCache *redis.Client) *CartRepo {
	return &CartRepo{cartCache: cartCache}
}

func generateCartItemKey(userID int) string {
	return fmt.Sprintf("cart:%d:items", userID)
}

// Get returns the user's cart. A user with no cart hash gets an empty cart,
// not an error; emptiness is a business condition the service layer judges.
func (r *CartRepo) Get(ctx context.Context, userID int) (*model.Cart, error) {
	itemsKey := generateCartItemKey(userID)

	items, err := r.cartCache.HGetAll(ctx, itemsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}

	cart := &model.Cart{
		UserID: userID,
	}
	for bookID, quantityStr := range items {
		quantity, err := strconv.Atoi(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity for book %s: %w", bookID, err)
		}
		if quantity > 0 {
			cart.Items = append(cart.Items, model.CartItem{
				BookID:   bookID,
				Quantity: quantity,
			})
		}
	}

	return cart, nil
}

// Add applies a quantity delta to one cart line atomically. A negative delta
// that would drive the line below zero is rejected; a delta that lands the
// line exactly on zero removes it.
func (r *CartRepo) Add(ctx context.Context, userID int, bookID string, deltaQuantity int) error {
	itemsKey := generateCartItemKey(userID)

	luaScript := `
		local key = KEYS[1]
		local book_id = ARGV[1]
		local delta = tonumber(ARGV[2])

		if delta < 0 then
			local current = tonumber(redis.call('HGET', key, book_id) or "0")
			if current + delta < 0 then
				return -2
			end
			if current == -delta then
				redis.call('HDEL', key, book_id)
				return 0
			end
		end

		return redis.call('HINCRBY', key, book_id, delta)
	`

	result, err := r.cartCache.Eval(ctx, luaScript, []string{itemsKey}, bookID, deltaQuantity).Result()
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	switch v := result.(type) {
	case int64:
		if v == -2 {
			return fmt.Errorf("%w for book %s", ErrInsufficientQuantity, bookID)
		}
		return nil
	default:
		return fmt.Errorf("unexpected result type: %T", result)
	}
}

// Delete removes one book from the cart.
func (r *CartRepo) Delete(ctx context.Context, userID int, bookID string) error {
	itemsKey := generateCartItemKey(userID)

	err := r.cartCache.HDel(ctx, itemsKey, bookID).Err()
	if err != nil {
		return fmt.Errorf("failed to delete item from cart: %w", err)
	}
	return nil
}

// Clear drops the whole cart hash. Called by checkout after the order is
// durable, never before.
func (r *CartRepo) Clear(ctx context.Context, userID int) error {
	itemsKey := generateCartItemKey(userID)

	err := r.cartCache.Del(ctx, itemsKey).Err()
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

var _ ICartRepository = (*CartRepo)(nil)
