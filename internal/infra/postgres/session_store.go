package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assessment-engine/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type sessionRow struct {
	bun.BaseModel `bun:"table:assessment_sessions,alias:s"`

	ID              string                   `bun:"id,pk"`
	UserID          string                   `bun:"user_id,notnull"`
	Domain          string                   `bun:"domain,notnull"`
	TestType        string                   `bun:"test_type,notnull"`
	Status          string                   `bun:"status,notnull"`
	Score           int                      `bun:"score"`
	MaxScore        int                      `bun:"max_score"`
	TotalQuestions  int                      `bun:"total_questions"`
	CorrectAnswers  int                      `bun:"correct_answers"`
	Percentage      int                      `bun:"percentage"`
	TotalTimeSpent  int                      `bun:"total_time_spent"`
	StartedAt       time.Time                `bun:"started_at,notnull"`
	CompletedAt     *time.Time               `bun:"completed_at"`
	Questions       []domain.SessionQuestion `bun:"questions,type:jsonb"`
	Recommendations []domain.Recommendation  `bun:"recommendations,type:jsonb"`
}

func toRow(s domain.Session) *sessionRow {
	return &sessionRow{
		ID:              s.ID,
		UserID:          s.UserID,
		Domain:          s.Domain,
		TestType:        string(s.TestType),
		Status:          string(s.Status),
		Score:           s.Score,
		MaxScore:        s.MaxScore,
		TotalQuestions:  s.TotalQuestions,
		CorrectAnswers:  s.CorrectAnswers,
		Percentage:      s.Percentage,
		TotalTimeSpent:  s.TotalTimeSpent,
		StartedAt:       s.StartedAt,
		CompletedAt:     s.CompletedAt,
		Questions:       s.Questions,
		Recommendations: s.Recommendations,
	}
}

func (r *sessionRow) toDomain() domain.Session {
	recs := r.Recommendations
	if recs == nil {
		recs = []domain.Recommendation{}
	}
	return domain.Session{
		ID:              r.ID,
		UserID:          r.UserID,
		Domain:          r.Domain,
		TestType:        domain.TestType(r.TestType),
		Questions:       r.Questions,
		Score:           r.Score,
		MaxScore:        r.MaxScore,
		TotalQuestions:  r.TotalQuestions,
		CorrectAnswers:  r.CorrectAnswers,
		Percentage:      r.Percentage,
		Status:          domain.SessionStatus(r.Status),
		StartedAt:       r.StartedAt,
		CompletedAt:     r.CompletedAt,
		TotalTimeSpent:  r.TotalTimeSpent,
		Recommendations: recs,
	}
}

// SessionStore persists sessions in Postgres through bun. Status-guarded
// writes are single UPDATE statements whose predicate includes the owner and
// status = 'in-progress'; RowsAffected tells whether the guard held.
type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	_, err := s.db.NewInsert().Model(toRow(session)).Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			return domain.ErrSessionExists
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (domain.Session, error) {
	row := new(sessionRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", sessionID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("select session: %w", err)
	}
	return row.toDomain(), nil
}

func (s *SessionStore) Complete(ctx context.Context, session domain.Session) (bool, error) {
	res, err := s.db.NewUpdate().
		Model(toRow(session)).
		Column("status", "score", "max_score", "correct_answers", "percentage",
			"total_time_spent", "completed_at", "questions", "recommendations").
		Where("id = ?", session.ID).
		Where("user_id = ?", session.UserID).
		Where("status = ?", string(domain.StatusInProgress)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("complete session: %w", err)
	}
	return affected(res)
}

func (s *SessionStore) Abandon(ctx context.Context, sessionID, userID string, at time.Time) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*sessionRow)(nil)).
		Set("status = ?", string(domain.StatusAbandoned)).
		Set("completed_at = ?", at).
		Where("id = ?", sessionID).
		Where("user_id = ?", userID).
		Where("status = ?", string(domain.StatusInProgress)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("abandon session: %w", err)
	}
	return affected(res)
}

func (s *SessionStore) ListByUser(ctx context.Context, userID string, filter domain.HistoryFilter) ([]domain.Session, error) {
	var rows []sessionRow
	q := s.db.NewSelect().Model(&rows).Where("user_id = ?", userID)
	if filter.Domain != "" {
		q = q.Where("domain = ?", filter.Domain)
	}
	if filter.TestType != "" {
		q = q.Where("test_type = ?", string(filter.TestType))
	}
	q = q.Order("started_at DESC", "id DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return toDomainList(rows), nil
}

func (s *SessionStore) ListCompleted(ctx context.Context, domainID string) ([]domain.Session, error) {
	var rows []sessionRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("domain = ?", domainID).
		Where("status = ?", string(domain.StatusCompleted)).
		Order("started_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list completed sessions: %w", err)
	}
	return toDomainList(rows), nil
}

func toDomainList(rows []sessionRow) []domain.Session {
	out := make([]domain.Session, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
