package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"assessment-engine/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches a domain's questions from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadDomain(ctx context.Context, domainID string) ([]domain.Question, error)
}

// CatalogRepository caches domain question sets with TTL to avoid repeated DB hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedDomain
}

type cachedDomain struct {
	questions []domain.Question
	byID      map[string]domain.Question
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedDomain),
	}
}

// SampleQuestions picks up to n random active questions of the given tier.
func (r *CatalogRepository) SampleQuestions(ctx context.Context, domainID string, tier domain.Difficulty, n int) ([]domain.Question, error) {
	entry, err := r.domain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	pool := make([]domain.Question, 0, len(entry.questions))
	for _, q := range entry.questions {
		if q.Active && q.Difficulty == tier {
			pool = append(pool, q)
		}
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool, nil
}

// GetQuestions returns the cached questions matching ids; unknown ids are omitted.
func (r *CatalogRepository) GetQuestions(ctx context.Context, domainID string, ids []string) (map[string]domain.Question, error) {
	entry, err := r.domain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Question, len(ids))
	for _, id := range ids {
		if q, ok := entry.byID[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (r *CatalogRepository) domain(ctx context.Context, domainID string) (cachedDomain, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[domainID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(domainID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[domainID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry, nil
		}
		r.mu.RUnlock()

		questions, err := r.loader.LoadDomain(ctx, domainID)
		if err != nil {
			return cachedDomain{}, err
		}
		entry := cachedDomain{
			questions: questions,
			byID:      make(map[string]domain.Question, len(questions)),
			expiresAt: now.Add(ttlWithJitter(r.ttl)),
		}
		for _, q := range questions {
			entry.byID[q.ID] = q
		}

		r.mu.Lock()
		r.cache[domainID] = entry
		r.mu.Unlock()
		return entry, nil
	})
	if err != nil {
		return cachedDomain{}, err
	}
	return result.(cachedDomain), nil
}

func ttlWithJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(ttl) / 10
	return ttl + time.Duration(rand.Int63n(jitterMax+1))
}
