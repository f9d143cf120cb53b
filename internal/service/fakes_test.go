package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/bookstore/internal/domain/model"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/bookstore/internal/infra/repository/redis_repo"
	"github.com/shopspring/decimal"
)

// In-memory doubles for the repository interfaces. The book store keeps the
// same linearizable reserve semantics as the postgres conditional update: the
// check and the decrement happen under one lock.

type fakeBookRepo struct {
	mu    sync.Mutex
	books map[string]*model.Book

	failReserve map[string]error
	failRelease map[string]error
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{
		books:       make(map[string]*model.Book),
		failReserve: make(map[string]error),
		failRelease: make(map[string]error),
	}
}

func (f *fakeBookRepo) addBook(bookID string, price string, stock uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[bookID] = &model.Book{
		BookID: bookID,
		Title:  "book " + bookID,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
	}
}

func (f *fakeBookRepo) stock(bookID string) uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.books[bookID].Stock
}

func (f *fakeBookRepo) setPrice(bookID string, price string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[bookID].Price = decimal.RequireFromString(price)
}

func (f *fakeBookRepo) CreateBook(ctx context.Context, book *model.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[book.BookID] = book
	return nil
}

func (f *fakeBookRepo) GetBookByID(ctx context.Context, bookID string) (*model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, ok := f.books[bookID]
	if !ok {
		return nil, db.ErrBookNotFound
	}
	copied := *book
	return &copied, nil
}

func (f *fakeBookRepo) GetBooksByIDs(ctx context.Context, bookIDs []string) ([]model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var books []model.Book
	for _, id := range bookIDs {
		if book, ok := f.books[id]; ok {
			books = append(books, *book)
		}
	}
	return books, nil
}

func (f *fakeBookRepo) GetAllBooks(ctx context.Context) ([]model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var books []model.Book
	for _, book := range f.books {
		books = append(books, *book)
	}
	return books, nil
}

func (f *fakeBookRepo) GetBookStock(ctx context.Context, bookID string) (int, error) {
	book, err := f.GetBookByID(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return int(book.Stock), nil
}

func (f *fakeBookRepo) ReserveStock(ctx context.Context, bookID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failReserve[bookID]; err != nil {
		return err
	}
	book, ok := f.books[bookID]
	if !ok {
		return db.ErrBookNotFound
	}
	if int(book.Stock) < quantity {
		return &model.InsufficientStockError{
			BookID:    bookID,
			Requested: quantity,
			Available: int(book.Stock),
		}
	}
	book.Stock -= uint(quantity)
	return nil
}

func (f *fakeBookRepo) ReleaseStock(ctx context.Context, bookID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failRelease[bookID]; err != nil {
		return err
	}
	book, ok := f.books[bookID]
	if !ok {
		return db.ErrBookNotFound
	}
	book.Stock += uint(quantity)
	return nil
}

var _ db.IBookRepository = (*fakeBookRepo)(nil)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order

	failCreate error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*model.Order)}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	copied := *order
	f.orders[order.OrderID] = &copied
	return nil
}

func (f *fakeOrderRepo) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var orders []model.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (f *fakeOrderRepo) UpdateOrderStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return db.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (f *fakeOrderRepo) UpdateOrderStatusFrom(ctx context.Context, orderID string, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if order.Status == status {
			order.Status = to
			return true, nil
		}
	}
	return false, nil
}

var _ db.IOrderRepository = (*fakeOrderRepo)(nil)

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[int]map[string]int

	failClear error
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[int]map[string]int)}
}

func (f *fakeCartRepo) setCart(userID int, items map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart := make(map[string]int, len(items))
	for id, qty := range items {
		cart[id] = qty
	}
	f.carts[userID] = cart
}

func (f *fakeCartRepo) size(userID int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.carts[userID])
}

func (f *fakeCartRepo) Get(ctx context.Context, userID int) (*model.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart := &model.Cart{UserID: userID}
	for bookID, quantity := range f.carts[userID] {
		cart.Items = append(cart.Items, model.CartItem{BookID: bookID, Quantity: quantity})
	}
	return cart, nil
}

func (f *fakeCartRepo) Add(ctx context.Context, userID int, bookID string, deltaQuantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		cart = make(map[string]int)
		f.carts[userID] = cart
	}
	next := cart[bookID] + deltaQuantity
	if next < 0 {
		return fmt.Errorf("%w for book %s", redis_repo.ErrInsufficientQuantity, bookID)
	}
	if next == 0 {
		delete(cart, bookID)
		return nil
	}
	cart[bookID] = next
	return nil
}

func (f *fakeCartRepo) Delete(ctx context.Context, userID int, bookID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts[userID], bookID)
	return nil
}

func (f *fakeCartRepo) Clear(ctx context.Context, userID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failClear != nil {
		return f.failClear
	}
	delete(f.carts, userID)
	return nil
}

var _ redis_repo.ICartRepository = (*fakeCartRepo)(nil)

type fakeEventProducer struct {
	mu        sync.Mutex
	created   []string
	changed   []string
	cancelled []string
}

func newFakeEventProducer() *fakeEventProducer {
	return &fakeEventProducer{}
}

func (f *fakeEventProducer) ProduceOrderCreated(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, order.OrderID)
	return nil
}

func (f *fakeEventProducer) ProduceOrderStatusChanged(ctx context.Context, orderID string, from, to model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, orderID)
	return nil
}

func (f *fakeEventProducer) ProduceOrderCancelled(ctx context.Context, order *model.Order, from model.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, order.OrderID)
	return nil
}
