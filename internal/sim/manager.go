package sim

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openborders/nationsim/internal/metrics"
)

// ErrSessionNotFound is returned for lookups of unknown or removed sessions.
var ErrSessionNotFound = errors.New("session not found")

// ErrTooManySessions is returned when the session cap is reached.
var ErrTooManySessions = errors.New("session limit reached")

// Manager owns all live sessions. There is no ambient global state: every run
// is an isolated Session so tests and concurrent players never interfere.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	recorder Recorder
	interval time.Duration // <= 0 disables the scheduler (manual ticking)
	maxLive  int
}

// NewManager creates a session manager. interval is the wall-clock tick
// interval for new sessions; rec may be nil.
func NewManager(rec Recorder, interval time.Duration, maxSessions int) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		recorder: rec,
		interval: interval,
		maxLive:  maxSessions,
	}
}

// Create starts a new session and, when the manager has a tick interval, its
// scheduler goroutine.
func (m *Manager) Create(d Difficulty, seed int64) (*Session, error) {
	m.mu.Lock()
	if m.maxLive > 0 && len(m.sessions) >= m.maxLive {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	s := NewSession(d, seed, m.recorder)
	m.sessions[s.ID] = s
	m.mu.Unlock()

	if m.interval > 0 {
		s.AttachScheduler(m.interval)
	}
	metrics.ActiveSessions.Inc()
	return s, nil
}

// Get looks up a session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove closes and drops a session.
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	metrics.ActiveSessions.Dec()
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close shuts down every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
		metrics.ActiveSessions.Dec()
	}
}
