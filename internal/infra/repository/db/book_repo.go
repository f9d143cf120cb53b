package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrBookNotFound 書籍不存在
	ErrBookNotFound = errors.New("book not found")
)

// IBookRepository is the catalog store. ReserveStock and ReleaseStock are the
// only stock mutation primitives in the whole module; every other component
// goes through them so no read-modify-write on stock exists anywhere else.
type IBookRepository interface {
	CreateBook(ctx context.Context, book *model.Book) error
	GetBookByID(ctx context.Context, bookID string) (*model.Book, error)
	GetBooksByIDs(ctx context.Context, bookIDs []string) ([]model.Book, error)
	GetAllBooks(ctx context.Context) ([]model.Book, error)
	GetBookStock(ctx context.Context, bookID string) (int, error)
	ReserveStock(ctx context.Context, bookID string, quantity int) error
	ReleaseStock(ctx context.Context, bookID string, quantity int) error
}

type BookRepo struct {
	db *DbDao
}

func NewBookRepo(db *DbDao) *BookRepo {
	return &BookRepo{db: db}
}

func (s *BookRepo) CreateBook(ctx context.Context, book *model.Book) error {
	return s.db.WithContext(ctx).Create(book).Error
}

func (s *BookRepo) GetBookByID(ctx context.Context, bookID string) (*model.Book, error) {
	var book model.Book
	err := s.db.WithContext(ctx).First(&book, "book_id = ?", bookID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (s *BookRepo) GetBooksByIDs(ctx context.Context, bookIDs []string) ([]model.Book, error) {
	var books []model.Book
	err := s.db.WithContext(ctx).Where("book_id IN ?", bookIDs).Find(&books).Error
	return books, err
}

func (s *BookRepo) GetAllBooks(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	err := s.db.WithContext(ctx).Find(&books).Error
	return books, err
}

func (s *BookRepo) GetBookStock(ctx context.Context, bookID string) (int, error) {
	book, err := s.GetBookByID(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return int(book.Stock), nil
}

// ReserveStock decrements stock only if enough is available, in one
// conditional UPDATE. Two concurrent reservations of the last unit cannot both
// pass: the row lock serializes them and the second sees the decremented value.
func (s *BookRepo) ReserveStock(ctx context.Context, bookID string, quantity int) error {
	result := s.db.WithContext(ctx).Model(&model.Book{}).
		Where("book_id = ? AND stock >= ?", bookID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// The conditional update rejected us; re-read only to report why.
	available, err := s.GetBookStock(ctx, bookID)
	if err != nil {
		return err
	}
	return &model.InsufficientStockError{
		BookID:    bookID,
		Requested: quantity,
		Available: available,
	}
}

// ReleaseStock is the inverse of ReserveStock. Stock has no upper bound, so
// the increment is unconditional.
func (s *BookRepo) ReleaseStock(ctx context.Context, bookID string, quantity int) error {
	result := s.db.WithContext(ctx).Model(&model.Book{}).
		Where("book_id = ?", bookID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

var _ IBookRepository = (*BookRepo)(nil)
