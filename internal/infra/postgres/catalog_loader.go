package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"assessment-engine/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads question JSONB from Postgres.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

// LoadDomain returns every question tagged with domainID, active or not.
func (l *CatalogLoader) LoadDomain(ctx context.Context, domainID string) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT data FROM questions WHERE $1 = ANY(domains) ORDER BY id`, domainID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}

// SaveQuestion upserts catalog content; used by seeding and tests.
func (l *CatalogLoader) SaveQuestion(ctx context.Context, q domain.Question) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO questions (id, domains, difficulty, active, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET domains = EXCLUDED.domains, difficulty = EXCLUDED.difficulty,
		    active = EXCLUDED.active, data = EXCLUDED.data`,
		q.ID, q.Domains, string(q.Difficulty), q.Active, data)
	if err != nil {
		return fmt.Errorf("save question %s: %w", q.ID, err)
	}
	return nil
}
