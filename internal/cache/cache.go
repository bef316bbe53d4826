package cache

import (
	"context"
	"errors"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/google/uuid"
)

// ItemCache fronts the item store for catalog reads. Mutating paths are
// expected to invalidate the touched item.
type ItemCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	Set(ctx context.Context, item *domain.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var ErrCacheMiss = errors.New("cache miss")
