package redis_repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type BookStockRepoError error

var (
	// ErrStockNotCached 快取沒有該書籍庫存
	ErrStockNotCached BookStockRepoError = errors.New("book stock not cached")
)

// IBookStockCache 書籍庫存快取
// redis 只放庫存數字，書籍詳細資訊存在db
type IBookStockCache interface {
	SetBookStock(ctx context.Context, bookID string, stock int) error
	GetBookStock(ctx context.Context, bookID string) (int, error)
	DeleteBookStock(ctx context.Context, bookID string) error
}

type BookStockRepo struct {
	stockCache *redis.Client
}

func NewBookStockRepo(stockCache *redis.Client) *BookStockRepo {
	return &BookStockRepo{stockCache: stockCache}
}

func generateBookStockKey(bookID string) string {
	return fmt.Sprintf("book:%s:stock", bookID)
}

func (s *BookStockRepo) SetBookStock(ctx context.Context, bookID string, stock int) error {
	redisKey := generateBookStockKey(bookID)
	return s.stockCache.HSet(ctx, redisKey, "stock", stock).Err()
}

// GetBookStock 取得快取的庫存數量
// 錯誤:
//   - ErrStockNotCached: 快取沒有資料
//   - err: 其他錯誤
func (s *BookStockRepo) GetBookStock(ctx context.Context, bookID string) (int, error) {
	redisKey := generateBookStockKey(bookID)
	stock, err := s.stockCache.HGet(ctx, redisKey, "stock").Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrStockNotCached
	}
	if err != nil {
		return 0, err
	}

	stockInt, err := strconv.ParseInt(stock, 10, 64)
	if err != nil {
		return 0, err
	}

	return int(stockInt), nil
}

func (s *BookStockRepo) DeleteBookStock(ctx context.Context, bookID string) error {
	redisKey := generateBookStockKey(bookID)
	return s.stockCache.Del(ctx, redisKey).Err()
}

var _ IBookStockCache = (*BookStockRepo)(nil)
