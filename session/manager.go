package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager maps browser session ids (carried in an httpOnly cookie) to
// per-session token stores. Expired sessions are swept in the background.
type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*managedSession
	ttl               time.Duration
	defaultBusinessID string
}

type managedSession struct {
	store     *Store
	expiresAt time.Time
}

type ManagerOption func(*Manager)

func WithManagerDefaultBusinessID(businessID string) ManagerOption {
	return func(m *Manager) {
		m.defaultBusinessID = businessID
	}
}

func NewManager(ttl time.Duration, options ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*managedSession),
		ttl:      ttl,
	}
	for _, opt := range options {
		opt(m)
	}
	go m.startCleanup()
	return m
}

// Create allocates a new session and returns its id and store.
func (m *Manager) Create() (string, *Store) {
	sessionID := uuid.New().String()
	store := NewStore(NewMemoryStorage(), WithDefaultBusinessID(m.defaultBusinessID))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = &managedSession{
		store:     store,
		expiresAt: NowTimeFunc().Add(m.ttl),
	}
	return sessionID, store
}

// Get returns the store for a session id, or false when the session is
// unknown or expired.
func (m *Manager) Get(sessionID string) (*Store, bool) {
	m.mu.RLock()
	ms, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if NowTimeFunc().After(ms.expiresAt) {
		m.Delete(sessionID)
		return nil, false
	}
	return ms.store, true
}

func (m *Manager) Delete(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := NowTimeFunc()
		m.mu.Lock()
		for id, ms := range m.sessions {
			if now.After(ms.expiresAt) {
				delete(m.sessions, id)
			}
		}
		m.mu.Unlock()
	}
}
