package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/google/uuid"
)

// MemoryItemStore implements ItemStore with in-memory storage
type MemoryItemStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*domain.Item
}

func NewMemoryItemStore() *MemoryItemStore {
	return &MemoryItemStore{items: make(map[uuid.UUID]*domain.Item)}
}

func (s *MemoryItemStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		return nil, ErrItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *MemoryItemStore) FindAllByID(_ context.Context, ids []uuid.UUID) ([]*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Item, 0, len(ids))
	for _, id := range ids {
		if item, exists := s.items[id]; exists {
			cp := *item
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (s *MemoryItemStore) List(_ context.Context, limit, offset int) ([]*domain.Item, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Item, 0, len(s.items))
	for _, item := range s.items {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*domain.Item, 0, end-offset)
	for _, item := range all[offset:end] {
		cp := *item
		page = append(page, &cp)
	}
	return page, total, nil
}

func (s *MemoryItemStore) Save(_ context.Context, item *domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *item
	now := time.Now()
	if existing, exists := s.items[item.ID]; exists {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.items[item.ID] = &cp
	return nil
}

func (s *MemoryItemStore) AdjustQuantity(_ context.Context, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.items[id]
	if !exists {
		return ErrItemNotFound
	}
	if item.AvailableQuantity+delta < 0 {
		return ErrInsufficientStock
	}
	item.AvailableQuantity += delta
	item.UpdatedAt = time.Now()
	return nil
}
