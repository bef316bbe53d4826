package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/domain"
	"github.com/google/uuid"
)

// MemoryUserStore implements UserStore with in-memory storage
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (s *MemoryUserStore) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryUserStore) Save(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *user
	now := time.Now()
	if existing, exists := s.users[user.ID]; exists {
		cp.CreatedAt = existing.CreatedAt
	} else if cp.CreatedAt.IsZero() {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.users[user.ID] = &cp
	return nil
}

// MemoryResetCodeStore implements ResetCodeStore with in-memory storage.
// Codes are short-lived, so there is no persistent counterpart.
type MemoryResetCodeStore struct {
	mu    sync.Mutex
	codes map[uuid.UUID]domain.ResetCode
}

func NewMemoryResetCodeStore() *MemoryResetCodeStore {
	return &MemoryResetCodeStore{codes: make(map[uuid.UUID]domain.ResetCode)}
}

func (s *MemoryResetCodeStore) Save(_ context.Context, code *domain.ResetCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[code.Code] = *code
	return nil
}

func (s *MemoryResetCodeStore) Consume(_ context.Context, code uuid.UUID) (*domain.ResetCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rc, exists := s.codes[code]
	if !exists {
		return nil, ErrResetCodeNotFound
	}
	delete(s.codes, code)
	if rc.IsExpired() {
		return nil, ErrResetCodeNotFound
	}
	return &rc, nil
}
