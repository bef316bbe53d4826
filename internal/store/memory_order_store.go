package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/google/uuid"
)

// MemoryOrderStore implements OrderStore with in-memory storage
type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[uuid.UUID]*domain.Order)}
}

func (s *MemoryOrderStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[id]
	if !exists {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (s *MemoryOrderStore) Save(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneOrder(order)
	now := time.Now()
	if existing, exists := s.orders[order.ID]; exists {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.orders[order.ID] = cp
	return nil
}

func (s *MemoryOrderStore) FindConfirmedByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var confirmed []*domain.Order
	for _, order := range s.orders {
		if order.UserID == userID && order.Status == domain.OrderStatusConfirmed {
			confirmed = append(confirmed, order)
		}
	}
	sort.Slice(confirmed, func(i, j int) bool {
		return confirmed[i].CreatedAt.After(confirmed[j].CreatedAt)
	})

	total := len(confirmed)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*domain.Order, 0, end-offset)
	for _, order := range confirmed[offset:end] {
		page = append(page, cloneOrder(order))
	}
	return page, total, nil
}

func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.Lines = make([]domain.OrderLine, len(o.Lines))
	copy(cp.Lines, o.Lines)
	return &cp
}
