// Package session keeps the uploaded dataset of each browser in memory.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"absentee/domain/attendance"
	"absentee/internal/errors"
	"absentee/internal/observability"
)

// Session is one browser's loaded dataset. Thresholds are never stored; each request carries its own.
type Session struct {
	ID        uuid.UUID
	Dataset   *attendance.Dataset
	CreatedAt time.Time
	LastSeen  time.Time
}

// Store is an in-memory session map with idle expiry
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewStore creates a store whose sessions expire after ttl without access
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   slog.With("component", "session_store"),
	}
}

// Create stores ds under a fresh ID
func (s *Store) Create(ds *attendance.Dataset) Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.New(),
		Dataset:   ds,
		CreatedAt: now,
		LastSeen:  now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	observability.ActiveSessions.Set(float64(count))
	s.logger.Info("session created", "session_id", sess.ID, "file", ds.Filename, "rows", ds.Len())
	return *sess
}

// Replace drops the session previousID, if any, and stores ds under a fresh ID
func (s *Store) Replace(previousID string, ds *attendance.Dataset) Session {
	if previousID != "" {
		s.Delete(previousID)
	}
	return s.Create(ds)
}

// Get returns the live session with the given ID and marks it as used.
// Unknown, malformed and expired IDs are NOT_FOUND.
func (s *Store) Get(id string) (Session, error) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return Session{}, errors.NotFound("session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Session{}, errors.NotFound("session")
	}
	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, sessionID)
		observability.ActiveSessions.Set(float64(len(s.sessions)))
		return Session{}, errors.NotFound("session")
	}
	sess.LastSeen = now
	return *sess, nil
}

// Delete removes a session and reports whether it existed
func (s *Store) Delete(id string) bool {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		return false
	}

	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	count := len(s.sessions)
	s.mu.Unlock()

	if ok {
		observability.ActiveSessions.Set(float64(count))
		s.logger.Info("session deleted", "session_id", sessionID)
	}
	return ok
}

// Len returns the number of stored sessions, expired or not
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts expired sessions and returns how many were removed
func (s *Store) Sweep() int {
	now := s.now()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if removed > 0 {
		observability.ActiveSessions.Set(float64(count))
		s.logger.Debug("expired sessions evicted", "removed", removed, "remaining", count)
	}
	return removed
}

// Start runs Sweep every interval until ctx is done
func (s *Store) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	return now.Sub(sess.LastSeen) > s.ttl
}
