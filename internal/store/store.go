package store

import (
	"context"
	"errors"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/google/uuid"
)

// Common errors returned by the stores
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrResetCodeNotFound = errors.New("reset code not found")
)

// ItemStore is the inventory the cart engine reserves stock against.
type ItemStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)

	// FindAllByID returns the records for the given ids, preserving the
	// input order. Unknown ids are skipped.
	FindAllByID(ctx context.Context, ids []uuid.UUID) ([]*domain.Item, error)

	// List returns a page of items ordered by creation time, plus the
	// total item count for paging metadata.
	List(ctx context.Context, limit, offset int) ([]*domain.Item, int, error)

	Save(ctx context.Context, item *domain.Item) error

	// AdjustQuantity atomically applies delta to the item's available
	// quantity. It fails with ErrInsufficientStock if the result would be
	// negative, leaving the record unchanged. This is the single
	// concurrency-safe update path for cross-session reservations.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) error
}

type OrderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Save(ctx context.Context, order *domain.Order) error

	// FindConfirmedByUser returns a page of the user's CONFIRMED orders,
	// newest first, plus the total count of such orders.
	FindConfirmedByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, int, error)
}

type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *domain.User) error
}

// ResetCodeStore holds short-lived password-reset codes.
type ResetCodeStore interface {
	Save(ctx context.Context, code *domain.ResetCode) error

	// Consume removes and returns the code. Expired or unknown codes fail
	// with ErrResetCodeNotFound.
	Consume(ctx context.Context, code uuid.UUID) (*domain.ResetCode, error)
}
