package catalog

import (
	"context"
	"errors"

	"github.com/MarharytaFilipovych/store-application/internal/cache"
	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/MarharytaFilipovych/store-application/internal/store"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Service serves catalog reads through an item cache. Cache failures are
// logged and bypassed; the store stays authoritative.
type Service struct {
	items store.ItemStore
	cache cache.ItemCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewService(items store.ItemStore, itemCache cache.ItemCache) *Service {
	return &Service{
		items: items,
		cache: itemCache,
	}
}

func (s *Service) GetItem(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	// Use singleflight to collapse concurrent misses for the same id
	v, err, _ := s.sfg.Do(id.String(), func() (interface{}, error) {
		if s.cache != nil {
			item, err := s.cache.Get(ctx, id)
			if err == nil {
				return item, nil
			}
			if !errors.Is(err, cache.ErrCacheMiss) {
				log.WithError(err).Warn("item cache get error")
			}
		}

		item, err := s.items.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			go func() {
				if errSet := s.cache.Set(context.Background(), item); errSet != nil {
					log.WithError(errSet).Warn("item cache set error")
				}
			}()
		}
		return item, nil
	})

	if err != nil {
		return nil, err
	}
	return v.(*domain.Item), nil
}

// ListItems returns a catalog page straight from the store; list results are
// not cached, only individual records are.
func (s *Service) ListItems(ctx context.Context, limit, offset int) ([]*domain.Item, int, error) {
	return s.items.List(ctx, limit, offset)
}
