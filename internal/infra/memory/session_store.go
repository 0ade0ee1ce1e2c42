package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"assessment-engine/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Conditional writes compare and swap under the store mutex.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.Session),
	}
}

func (s *SessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return domain.ErrSessionExists
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Get(_ context.Context, sessionID string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (s *SessionStore) Complete(_ context.Context, session domain.Session) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[session.ID]
	if !ok || current.UserID != session.UserID || current.Status != domain.StatusInProgress {
		return false, nil
	}
	s.sessions[session.ID] = session.Clone()
	return true, nil
}

func (s *SessionStore) Abandon(_ context.Context, sessionID, userID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[sessionID]
	if !ok || current.UserID != userID || current.Status != domain.StatusInProgress {
		return false, nil
	}
	current.Status = domain.StatusAbandoned
	current.CompletedAt = &at
	s.sessions[sessionID] = current
	return true, nil
}

func (s *SessionStore) ListByUser(_ context.Context, userID string, filter domain.HistoryFilter) ([]domain.Session, error) {
	s.mu.RLock()
	out := make([]domain.Session, 0)
	for _, session := range s.sessions {
		if session.UserID == userID && filter.Matches(session) {
			out = append(out, session.Clone())
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *SessionStore) ListCompleted(_ context.Context, domainID string) ([]domain.Session, error) {
	s.mu.RLock()
	out := make([]domain.Session, 0)
	for _, session := range s.sessions {
		if session.Domain == domainID && session.Status == domain.StatusCompleted {
			out = append(out, session.Clone())
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(sessions []domain.Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].StartedAt.Equal(sessions[j].StartedAt) {
			return sessions[i].StartedAt.After(sessions[j].StartedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
}
