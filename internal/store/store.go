package store

import (
	"context"
	"errors"

	"go-shop/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store is the persistence boundary consumed by the services. Backends
// must be safe for concurrent use.
type Store interface {
	Users() UserRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository

	// WithinTx runs fn against a transactional view of the store. If fn
	// returns an error every write made through the view is rolled back.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
	// List returns every product, most recent first.
	List(ctx context.Context) ([]*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type CartRepository interface {
	Get(ctx context.Context, id int64) (*models.CartItem, error)
	Find(ctx context.Context, userID, productID int64) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	SetQuantity(ctx context.Context, id int64, quantity int) error
	Delete(ctx context.Context, id int64) error
	// Lines returns the user's items joined with the live product rows,
	// ordered by item id. Subtotal is left for the caller.
	Lines(ctx context.Context, userID int64) ([]models.CartLine, error)
	// ClearUser deletes every item of the user and reports how many rows
	// were removed.
	ClearUser(ctx context.Context, userID int64) (int64, error)
	DeleteByProduct(ctx context.Context, productID int64) error
}

type OrderRepository interface {
	// Create inserts the order and its items, filling in generated ids.
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	// ListByUser returns the user's orders with items, most recent first.
	ListByUser(ctx context.Context, userID int64) ([]*models.Order, error)
}
