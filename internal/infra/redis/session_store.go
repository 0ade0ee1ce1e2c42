package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"assessment-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis implementation of app.SessionRepository.
//   - Each session is one JSON document under assessment:session:{id}.
//   - assessment:user:{userID}:sessions is a ZSET of session ids scored by start time.
//   - assessment:domain:{domain}:completed is a SET of completed session ids.
//
// Status-guarded writes run inside WATCH/MULTI: if the document changes between
// the read and EXEC, the transaction fails and the write reports no change.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	key := s.sessionKey(session.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if exists > 0 {
			return domain.ErrSessionExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, s.userKey(session.UserID), redis.Z{
				Score:  float64(session.StartedAt.UnixMilli()),
				Member: session.ID,
			})
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrSessionExists
	}
	return err
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("read session: %w", err)
	}
	return decodeSession(raw)
}

func (s *SessionStore) Complete(ctx context.Context, session domain.Session) (bool, error) {
	return s.guardedWrite(ctx, session.ID, session.UserID, func(domain.Session) domain.Session {
		return session
	})
}

func (s *SessionStore) Abandon(ctx context.Context, sessionID, userID string, at time.Time) (bool, error) {
	return s.guardedWrite(ctx, sessionID, userID, func(current domain.Session) domain.Session {
		current.Status = domain.StatusAbandoned
		current.CompletedAt = &at
		return current
	})
}

// guardedWrite replaces the stored session with mutate's result only while it
// is owned by userID and in progress.
func (s *SessionStore) guardedWrite(ctx context.Context, sessionID, userID string, mutate func(domain.Session) domain.Session) (bool, error) {
	key := s.sessionKey(sessionID)
	applied := false
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		current, err := decodeSession(raw)
		if err != nil {
			return err
		}
		if current.UserID != userID || current.Status != domain.StatusInProgress {
			return nil
		}

		next := mutate(current)
		next.ID, next.UserID, next.Domain = current.ID, current.UserID, current.Domain
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if next.Status == domain.StatusCompleted {
				pipe.SAdd(ctx, s.completedKey(next.Domain), next.ID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		applied = true
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("guarded session write: %w", err)
	}
	return applied, nil
}

func (s *SessionStore) ListByUser(ctx context.Context, userID string, filter domain.HistoryFilter) ([]domain.Session, error) {
	stop := int64(-1)
	if filter.Limit > 0 && filter.Domain == "" && filter.TestType == "" {
		stop = int64(filter.Limit) - 1
	}
	ids, err := s.client.ZRevRange(ctx, s.userKey(userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	sessions, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(sessions))
	for _, session := range sessions {
		if !filter.Matches(session) {
			continue
		}
		out = append(out, session)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *SessionStore) ListCompleted(ctx context.Context, domainID string) ([]domain.Session, error) {
	ids, err := s.client.SMembers(ctx, s.completedKey(domainID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	sessions, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := sessions[:0]
	for _, session := range sessions {
		if session.Status == domain.StatusCompleted && session.Domain == domainID {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

// load fetches sessions in id order, skipping ids whose document is gone.
func (s *SessionStore) load(ctx context.Context, ids []string) ([]domain.Session, error) {
	if len(ids) == 0 {
		return []domain.Session{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	out := make([]domain.Session, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		session, err := decodeSession([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, session)
	}
	return out, nil
}

func decodeSession(raw []byte) (domain.Session, error) {
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return "assessment:session:" + sessionID
}

func (s *SessionStore) userKey(userID string) string {
	return "assessment:user:" + userID + ":sessions"
}

func (s *SessionStore) completedKey(domainID string) string {
	return "assessment:domain:" + domainID + ":completed"
}
