package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"assessment-engine/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches a domain's questions from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadDomain(ctx context.Context, domainID string) ([]domain.Question, error)
}

// CatalogRepository caches question content in Redis and falls back to a loader on cache miss.
// Questions are stored as:   HSET catalog:{domain}:questions {questionID} {json}
// Active ids per tier as:    SADD catalog:{domain}:tier:{difficulty} {questionID}
// A fill is marked by:       SET  catalog:{domain}:loaded 1
// Tier sampling uses SRANDMEMBER with a positive count, which never repeats a member.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (r *CatalogRepository) SampleQuestions(ctx context.Context, domainID string, tier domain.Difficulty, n int) ([]domain.Question, error) {
	if n <= 0 {
		return nil, nil
	}
	if err := r.ensureLoaded(ctx, domainID); err != nil {
		return nil, err
	}
	ids, err := r.client.SRandMemberN(ctx, r.tierKey(domainID, tier), int64(n)).Result()
	if err != nil {
		return nil, fmt.Errorf("sample tier %s: %w", tier, err)
	}
	found, err := r.fetch(ctx, domainID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := found[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *CatalogRepository) GetQuestions(ctx context.Context, domainID string, ids []string) (map[string]domain.Question, error) {
	if err := r.ensureLoaded(ctx, domainID); err != nil {
		return nil, err
	}
	return r.fetch(ctx, domainID, ids)
}

func (r *CatalogRepository) fetch(ctx context.Context, domainID string, ids []string) (map[string]domain.Question, error) {
	out := make(map[string]domain.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	vals, err := r.client.HMGet(ctx, r.questionsKey(domainID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read cached questions: %w", err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("decode cached question %s: %w", ids[i], err)
		}
		out[ids[i]] = q
	}
	return out, nil
}

func (r *CatalogRepository) ensureLoaded(ctx context.Context, domainID string) error {
	loaded, err := r.client.Exists(ctx, r.loadedKey(domainID)).Result()
	if err == nil && loaded > 0 {
		return nil
	}

	_, err, _ = r.sf.Do(domainID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		loaded, err := r.client.Exists(ctx, r.loadedKey(domainID)).Result()
		if err == nil && loaded > 0 {
			return nil, nil
		}

		questions, err := r.loader.LoadDomain(ctx, domainID)
		if err != nil {
			return nil, err
		}
		return nil, r.fill(ctx, domainID, questions)
	})
	return err
}

func (r *CatalogRepository) fill(ctx context.Context, domainID string, questions []domain.Question) error {
	keys := []string{r.questionsKey(domainID), r.loadedKey(domainID)}
	for _, tier := range domain.Tiers {
		keys = append(keys, r.tierKey(domainID, tier))
	}
	ttl := r.ttlWithJitter()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		for _, q := range questions {
			data, err := json.Marshal(q)
			if err != nil {
				return fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			pipe.HSet(ctx, r.questionsKey(domainID), q.ID, data)
			if q.Active {
				pipe.SAdd(ctx, r.tierKey(domainID, q.Difficulty), q.ID)
			}
		}
		pipe.Set(ctx, r.loadedKey(domainID), "1", ttl)
		if ttl > 0 {
			for _, key := range keys {
				pipe.Expire(ctx, key, ttl)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache domain %s: %w", domainID, err)
	}
	return nil
}

func (r *CatalogRepository) questionsKey(domainID string) string {
	return "catalog:" + domainID + ":questions"
}

func (r *CatalogRepository) tierKey(domainID string, tier domain.Difficulty) string {
	return "catalog:" + domainID + ":tier:" + string(tier)
}

func (r *CatalogRepository) loadedKey(domainID string) string {
	return "catalog:" + domainID + ":loaded"
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
