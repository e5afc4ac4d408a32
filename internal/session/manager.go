package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domainerrors "github.com/meraroom/meraroom-server/internal/errors"
	"github.com/meraroom/meraroom-server/internal/id"
)

// DefaultIdleTTL is how long an untouched session survives.
const DefaultIdleTTL = 2 * time.Hour

// Options configures a Manager.
type Options struct {
	IdleTTL  time.Duration
	OnChange ChangeFunc
	// OnClose is called after a session is removed.
	OnClose func(sessionID string)
}

// Manager owns every live session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	source  CatalogSource
	opts    Options
	logger  *slog.Logger
	now     func() time.Time
	closing bool
}

// NewManager creates an empty Manager.
func NewManager(source CatalogSource, opts Options, logger *slog.Logger) *Manager {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	return &Manager{
		sessions: make(map[string]*Session),
		source:   source,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new session on the home screen.
func (m *Manager) Create() (*Session, error) {
	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to generate session id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closing {
		return nil, domainerrors.Internal("server is shutting down")
	}

	s := newSession(sessionID, m.now(), m.source, m.opts.OnChange, m.logger)
	m.sessions[sessionID] = s

	m.logger.Info("session created",
		slog.String("session_id", sessionID),
		slog.Int("total_sessions", len(m.sessions)))
	return s, nil
}

// Get returns a live session or a NOT_FOUND error.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, domainerrors.NotFoundf("session %s not found", sessionID)
	}
	return s, nil
}

// Exists reports whether sessionID is live.
func (m *Manager) Exists(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[sessionID]
	return ok
}

// Delete stops and removes a session.
func (m *Manager) Delete(sessionID string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return domainerrors.NotFoundf("session %s not found", sessionID)
	}
	m.close(s)
	m.logger.Info("session deleted", slog.String("session_id", sessionID))
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the idle TTL.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	var expired []*Session
	for sid, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, sid)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.close(s)
	}
	if len(expired) > 0 {
		m.logger.Info("expired idle sessions", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Shutdown closes every session and rejects new ones.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closing = true
	all := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		m.close(s)
	}
	m.logger.Info("session manager shutdown complete", slog.Int("closed", len(all)))
}

func (m *Manager) close(s *Session) {
	s.Close()
	if m.opts.OnClose != nil {
		m.opts.OnClose(s.ID)
	}
}
