package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/logistics-ops-backend/internal/core/domain"
	apperrors "github.com/lorrc/logistics-ops-backend/internal/core/errors"
	"github.com/lorrc/logistics-ops-backend/internal/core/ports"
)

// session is the registry's private mutable record for one connection.
// It never leaves the registry; everyone else gets SessionSnapshot copies.
type session struct {
	conn         ports.Connection
	identity     *domain.Identity
	regions      []string
	lastActivity time.Time
}

// SessionRegistry tracks every connected client behind a single coarse lock.
// Expected scale is hundreds to low thousands of sessions, so one RWMutex is
// simpler than per-session locking and contention is not a concern.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
	logger   *slog.Logger
	now      func() time.Time
}

var _ ports.SessionRegistry = (*SessionRegistry)(nil)

// RegistryOption customizes a SessionRegistry.
type RegistryOption func(*SessionRegistry)

// WithClock overrides the registry's clock.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *SessionRegistry) { r.now = now }
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(logger *slog.Logger, opts ...RegistryOption) *SessionRegistry {
	r := &SessionRegistry{
		sessions: make(map[uuid.UUID]*session),
		logger:   logger.With("component", "session_registry"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a new, unauthenticated session for conn and returns its ID.
func (r *SessionRegistry) Register(conn ports.Connection) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	r.sessions[id] = &session{
		conn:         conn,
		lastActivity: r.now(),
	}
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info("session registered",
		"session_id", id,
		"total_sessions", total,
	)
	return id
}

// Authenticate binds an identity to a session.
func (r *SessionRegistry) Authenticate(id uuid.UUID, identity domain.Identity) error {
	if identity.UserID == "" {
		return apperrors.ErrUserIDRequired
	}
	if identity.Role == "" {
		return apperrors.ErrRoleRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	ident := identity
	s.identity = &ident
	s.lastActivity = r.now()

	r.logger.Info("session authenticated",
		"session_id", id,
		"user_id", identity.UserID,
		"role", identity.Role,
	)
	return nil
}

// SetRegions replaces a session's region-interest set.
func (r *SessionRegistry) SetRegions(id uuid.UUID, regions []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	s.regions = append([]string(nil), regions...)
	s.lastActivity = r.now()

	r.logger.Debug("session regions updated",
		"session_id", id,
		"regions", regions,
	)
	return nil
}

// Touch refreshes a session's liveness timestamp. Unknown IDs are ignored;
// a message can race the reaper's eviction.
func (r *SessionRegistry) Touch(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		s.lastActivity = r.now()
	}
}

// Snapshot returns a read-only copy of one session's attributes.
func (r *SessionRegistry) Snapshot(id uuid.UUID) (domain.SessionSnapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return domain.SessionSnapshot{}, false
	}
	return snapshotOf(id, s), true
}

// Snapshots returns a read-only copy of every session's attributes.
func (r *SessionRegistry) Snapshots() []domain.SessionSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SessionSnapshot, 0, len(r.sessions))
	for id, s := range r.sessions {
		out = append(out, snapshotOf(id, s))
	}
	return out
}

// Connection returns the transport handle for a session.
func (r *SessionRegistry) Connection(id uuid.UUID) (ports.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	return s.conn, true
}

// Remove deletes a session and closes its transport. Idempotent: removing a
// session that is already gone is a no-op, which settles the race between a
// client-initiated close and the reaper's forced close.
func (r *SessionRegistry) Remove(id uuid.UUID) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, id)
	total := len(r.sessions)
	r.mu.Unlock()

	// Close outside the lock; the adapter's Close is close-once.
	if err := s.conn.Close(); err != nil {
		r.logger.Debug("session close error", "session_id", id, "error", err)
	}

	r.logger.Info("session removed",
		"session_id", id,
		"total_sessions", total,
	)
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func snapshotOf(id uuid.UUID, s *session) domain.SessionSnapshot {
	snap := domain.SessionSnapshot{
		ID:           id,
		Regions:      append([]string(nil), s.regions...),
		LastActivity: s.lastActivity,
	}
	if s.identity != nil {
		ident := *s.identity
		snap.Identity = &ident
	}
	return snap
}
