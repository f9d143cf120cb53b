package service

import (
	"context"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// StockLine is one (book, quantity) pair to reserve or release.
type StockLine struct {
	BookID   string
	Quantity int
}

func CartToStockLines(items []model.CartItem) []StockLine {
	lines := make([]StockLine, len(items))
	for i, item := range items {
		lines[i] = StockLine{BookID: item.BookID, Quantity: item.Quantity}
	}
	return lines
}

func OrderToStockLines(items []model.OrderItem) []StockLine {
	lines := make([]StockLine, len(items))
	for i, item := range items {
		lines[i] = StockLine{BookID: item.BookID, Quantity: item.Quantity}
	}
	return lines
}

type IInventoryLedger interface {
	Reserve(ctx context.Context, bookID string, quantity int) error
	ReserveAll(ctx context.Context, lines []StockLine) error
	Release(ctx context.Context, bookID string, quantity int) error
	ReleaseAll(ctx context.Context, lines []StockLine) error
}

// InventoryLedger is the single authority for stock movement. It owns no
// state of its own; the catalog row is the ledger and every movement is one
// atomic conditional update there.
type InventoryLedger struct {
	catalog db.IBookRepository
}

func NewInventoryLedger(catalog db.IBookRepository) *InventoryLedger {
	if catalog == nil {
		panic("InventoryLedger dependency catalog is nil")
	}
	return &InventoryLedger{catalog: catalog}
}

// Reserve decrements stock only if enough is available. On failure stock is
// untouched and the error reports requested vs available.
func (l *InventoryLedger) Reserve(ctx context.Context, bookID string, quantity int) error {
	return l.catalog.ReserveStock(ctx, bookID, quantity)
}

// ReserveAll reserves every line or none. Lines are reserved one by one; when
// one fails, everything reserved so far in this batch is released again, so a
// failed checkout leaves stock exactly as it was found.
func (l *InventoryLedger) ReserveAll(ctx context.Context, lines []StockLine) error {
	reserved := make([]StockLine, 0, len(lines))
	for _, line := range lines {
		if err := l.catalog.ReserveStock(ctx, line.BookID, line.Quantity); err != nil {
			if compErr := l.ReleaseAll(ctx, reserved); compErr != nil {
				log.Error().
					Err(compErr).
					Str("book_id", line.BookID).
					Msg("compensating release after failed batch reserve did not fully apply")
			}
			return err
		}
		reserved = append(reserved, line)
	}
	return nil
}

// Release puts quantity back. No upper bound check: catalog stock is not
// otherwise capped.
func (l *InventoryLedger) Release(ctx context.Context, bookID string, quantity int) error {
	return l.catalog.ReleaseStock(ctx, bookID, quantity)
}

// ReleaseAll releases every line, even when the caller's request context is
// already dead: an unreleased reservation must never be dropped silently, so
// each failure is logged with enough detail to replay it by hand.
func (l *InventoryLedger) ReleaseAll(ctx context.Context, lines []StockLine) error {
	releaseCtx := context.WithoutCancel(ctx)

	var g errgroup.Group
	for _, line := range lines {
		g.Go(func() error {
			if err := l.catalog.ReleaseStock(releaseCtx, line.BookID, line.Quantity); err != nil {
				log.Error().
					Err(err).
					Str("book_id", line.BookID).
					Int("quantity", line.Quantity).
					Msg("stock release failed, manual replay required")
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

var _ IInventoryLedger = (*InventoryLedger)(nil)
