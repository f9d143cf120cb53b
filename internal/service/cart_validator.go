package service

import (
	"context"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
)

// CartValidator pre-checks a cart against current stock. This is advisory
// only: stock can move between this check and the reservation, so checkout
// still has to go through InventoryLedger.ReserveAll as the authority.
type CartValidator struct {
	catalog db.IBookRepository
}

func NewCartValidator(catalog db.IBookRepository) *CartValidator {
	if catalog == nil {
		panic("CartValidator dependency catalog is nil")
	}
	return &CartValidator{catalog: catalog}
}

// Validate reports every cart line whose quantity exceeds current stock.
// 錯誤:
//   - ErrBookNotFound: 書籍不存在
//   - *CartValidationError: 庫存不足
//   - err: 其他錯誤
func (v *CartValidator) Validate(ctx context.Context, cart *model.Cart) error {
	var violations []*model.InsufficientStockError
	for _, item := range cart.Items {
		available, err := v.catalog.GetBookStock(ctx, item.BookID)
		if err != nil {
			return err
		}
		if available < item.Quantity {
			violations = append(violations, &model.InsufficientStockError{
				BookID:    item.BookID,
				Requested: item.Quantity,
				Available: available,
			})
		}
	}
	if len(violations) > 0 {
		return &CartValidationError{Violations: violations}
	}
	return nil
}
