package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/form/catalog"
)

// DefaultSessionTTL is how long an idle session is kept.
const DefaultSessionTTL = 2 * time.Hour

// ManagerConfig holds session lifetime and timeout settings.
type ManagerConfig struct {
	SessionTTL    time.Duration
	SubmitTimeout time.Duration
	UploadTimeout time.Duration
}

// Manager owns the live wizard sessions.
type Manager struct {
	catalog *catalog.Catalog
	deps    Deps
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager. autosaver may be nil to disable drafts.
func NewManager(cat *catalog.Catalog, uploader Uploader, submitter Submitter, autosaver *Autosaver, cfg ManagerConfig, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Manager{
		catalog: cat,
		deps: Deps{
			Uploader:      uploader,
			Submitter:     submitter,
			Autosaver:     autosaver,
			Logger:        logger,
			SubmitTimeout: cfg.SubmitTimeout,
			UploadTimeout: cfg.UploadTimeout,
		},
		ttl:      ttl,
		logger:   logger.Named("wizard"),
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a session for formType. An empty clientID gets a generated one.
// With restore set, a saved draft for the client is loaded when one exists.
func (m *Manager) Create(ctx context.Context, formType, clientID string, restore bool) (*Session, error) {
	def, err := m.catalog.Get(formType)
	if err != nil {
		return nil, err
	}
	if clientID == "" {
		clientID = uuid.NewString()
	}
	s := NewSession(uuid.NewString(), clientID, def, m.deps)

	if restore && m.deps.Autosaver != nil {
		draft, err := m.deps.Autosaver.Load(ctx, s.DraftKey())
		switch {
		case err == nil:
			if rerr := s.Restore(draft); rerr != nil {
				m.logger.Warn("draft restore failed", zap.String("key", s.DraftKey()), zap.Error(rerr))
			}
		case errors.Is(err, domain.ErrNotFound):
		default:
			m.logger.Warn("draft load failed", zap.String("key", s.DraftKey()), zap.Error(err))
		}
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a live session and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	s.Touch(m.now())
	return s, nil
}

// Delete discards a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictExpired removes sessions idle for longer than the TTL and returns how many went.
// Sessions with a submission in flight are kept.
func (m *Manager) EvictExpired(now time.Time) int {
	cutoff := now.Add(-m.ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) && !s.Submitting() {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run evicts idle sessions until ctx is canceled.
func (m *Manager) Run(ctx context.Context) {
	interval := m.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Info("session janitor started", zap.Duration("ttl", m.ttl), zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Info("session janitor stopped")
			return
		case <-ticker.C:
			if n := m.EvictExpired(m.now()); n > 0 {
				m.logger.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
