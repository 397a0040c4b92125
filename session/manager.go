package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultIdleTimeout   = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// Manager owns the live sessions: it creates them, hands out lookups, and
// sweeps the ones whose clients went quiet.
type Manager struct {
	cfg           Config
	idleTimeout   time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool

	stopSweep chan struct{}
	sweepDone chan struct{}
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager) error

// WithIdleTimeout sets how long a session may sit idle before the sweeper
// closes it. Default is 30 minutes.
func WithIdleTimeout(timeout time.Duration) ManagerOption {
	return func(m *Manager) error {
		if timeout > 0 {
			m.idleTimeout = timeout
		}
		return nil
	}
}

// WithSweepInterval sets how often idle sessions are swept.
// Default is one minute.
func WithSweepInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) error {
		if interval > 0 {
			m.sweepInterval = interval
		}
		return nil
	}
}

// NewManager creates a session manager and starts its idle sweeper.
func NewManager(cfg Config, opts ...ManagerOption) (*Manager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:           cfg,
		idleTimeout:   defaultIdleTimeout,
		sweepInterval: defaultSweepInterval,
		logger:        logger.With("component", "session-manager"),
		sessions:      make(map[string]*Session),
		stopSweep:     make(chan struct{}),
		sweepDone:     make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	go m.sweepLoop()
	return m, nil
}

// CreateSession starts a new session. userID may be empty for anonymous
// clients; with a user id the session resumes that user's fact snapshot.
func (m *Manager) CreateSession(userID string) (*Session, error) {
	s, err := newSession(uuid.NewString(), userID, m.cfg)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		s.Close()
		return nil, ErrSessionClosed
	}
	m.sessions[s.ID()] = s
	return s, nil
}

// GetSession looks a session up by id.
func (m *Manager) GetSession(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// CloseSession closes one session and forgets it.
func (m *Manager) CloseSession(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the sweeper and closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	close(m.stopSweep)
	<-m.sweepDone

	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) sweepLoop() {
	defer close(m.sweepDone)

	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopSweep:
			return
		}
	}
}

// sweep closes sessions idle past the timeout.
func (m *Manager) sweep() {
	cutoff := time.Now().Add(-m.idleTimeout)

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		m.logger.Info("closing idle session", "session", s.ID())
		s.Close()
	}
}
