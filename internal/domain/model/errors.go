package model

import "fmt"

// InsufficientStockError is an expected business outcome, not a failure: the
// caller asked for more units than the book currently has.
type InsufficientStockError struct {
	BookID    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %s: requested %d, available %d", e.BookID, e.Requested, e.Available)
}
