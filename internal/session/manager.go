package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MarharytaFilipovych/store-application/internal/cart"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Session binds an authenticated user to their cart. The cart lives and dies
// with the session.
type Session struct {
	ID       string
	UserID   uuid.UUID
	Cart     *cart.Cart
	lastSeen atomic.Int64 // unix nanos
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// Manager owns the session table. Idle sessions are evicted by a background
// sweep; their cart reservations are released back to inventory so abandoned
// carts do not strand stock.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	engine  *cart.Engine
	idleTTL time.Duration

	stopSweep chan struct{}
	wg        sync.WaitGroup
}

func NewManager(engine *cart.Engine, idleTTL time.Duration) *Manager {
	m := &Manager{
		sessions:  make(map[string]*Session),
		engine:    engine,
		idleTTL:   idleTTL,
		stopSweep: make(chan struct{}),
	}

	m.wg.Add(1)
	go m.sweepLoop()

	return m
}

// Create opens a session with an empty cart.
func (m *Manager) Create(userID uuid.UUID) *Session {
	s := &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Cart:   cart.New(),
	}
	s.touch()

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get resolves a session id, touching its idle timer.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, exists := m.sessions[id]
	m.mu.RUnlock()
	if !exists {
		return nil, false
	}
	s.touch()
	return s, true
}

// Delete ends a session, releasing whatever its cart still reserves.
func (m *Manager) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	s, exists := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if exists {
		m.engine.ReleaseAll(ctx, s.Cart)
	}
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the background sweep and waits for it to finish
func (m *Manager) Close() error {
	close(m.stopSweep)
	m.wg.Wait()
	return nil
}

func (m *Manager) sweepLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.evictIdle()
		case <-m.stopSweep:
			return
		}
	}
}

func (m *Manager) evictIdle() {
	cutoff := time.Now().Add(-m.idleTTL).UnixNano()

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.lastSeen.Load() < cutoff {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		log.WithField("session_id", s.ID).Debug("evicting idle session")
		m.engine.ReleaseAll(context.Background(), s.Cart)
	}
}
