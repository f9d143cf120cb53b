package redis_decorator

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog/log"
)

/*
redis 只快取書籍庫存數量，所以只有跟庫存有關的操作才需要連動redis。
db的條件式更新仍是唯一授權來源；快取只服務advisory讀取（購物車預檢），
過期的快取最多讓預檢多放行一次，保留授權仍會擋下超賣。
*/
type CacheAsideBookRepo struct {
	db.IBookRepository
	cache redis_repo.IBookStockCache
}

func NewCacheAsideBookRepo(dbRepo db.IBookRepository, cache redis_repo.IBookStockCache) db.IBookRepository {
	if dbRepo == nil {
		panic("CacheAsideBookRepo dependency dbRepo is nil")
	}
	if cache == nil {
		panic("CacheAsideBookRepo dependency cache is nil")
	}
	return &CacheAsideBookRepo{IBookRepository: dbRepo, cache: cache}
}

func (p *CacheAsideBookRepo) CreateBook(ctx context.Context, book *model.Book) error {
	if err := p.IBookRepository.CreateBook(ctx, book); err != nil {
		return err
	}
	if err := p.cache.SetBookStock(ctx, book.BookID, int(book.Stock)); err != nil {
		log.Warn().Err(err).Str("book_id", book.BookID).Msg("seed stock cache failed")
	}
	return nil
}

// GetBookStock reads the cache first and falls back to db on a miss, then
// repopulates the cache.
func (p *CacheAsideBookRepo) GetBookStock(ctx context.Context, bookID string) (int, error) {
	stock, err := p.cache.GetBookStock(ctx, bookID)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, redis_repo.ErrStockNotCached) {
		log.Warn().Err(err).Str("book_id", bookID).Msg("stock cache read failed")
	}

	stock, err = p.IBookRepository.GetBookStock(ctx, bookID)
	if err != nil {
		return 0, err
	}

	if err := p.cache.SetBookStock(ctx, bookID, stock); err != nil {
		log.Warn().Err(err).Str("book_id", bookID).Msg("stock cache repopulate failed")
	}
	return stock, nil
}

func (p *CacheAsideBookRepo) ReserveStock(ctx context.Context, bookID string, quantity int) error {
	if err := p.IBookRepository.ReserveStock(ctx, bookID, quantity); err != nil {
		return err
	}
	p.invalidate(ctx, bookID)
	return nil
}

func (p *CacheAsideBookRepo) ReleaseStock(ctx context.Context, bookID string, quantity int) error {
	if err := p.IBookRepository.ReleaseStock(ctx, bookID, quantity); err != nil {
		return err
	}
	p.invalidate(ctx, bookID)
	return nil
}

// invalidate drops the cached stock after a db mutation; the next read
// repopulates it. A failed invalidation gets one async retry.
func (p *CacheAsideBookRepo) invalidate(ctx context.Context, bookID string) {
	if err := p.cache.DeleteBookStock(ctx, bookID); err != nil {
		log.Warn().Err(err).Str("book_id", bookID).Msg("stock cache invalidation failed, retrying")
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := p.cache.DeleteBookStock(context.WithoutCancel(ctx), bookID); err != nil {
				log.Error().Err(err).Str("book_id", bookID).Msg("stock cache invalidation retry failed")
			}
		}()
	}
}

var _ db.IBookRepository = (*CacheAsideBookRepo)(nil)
