package service

import (
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
)

var (
	ErrCartEmpty = errors.New("cart is empty")
)

// CartValidationError carries every line that failed the advisory pre-check,
// so the caller can show the whole list instead of fixing one line at a time.
type CartValidationError struct {
	Violations []*model.InsufficientStockError
}

func (e *CartValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return "cart validation failed: " + strings.Join(msgs, "; ")
}
