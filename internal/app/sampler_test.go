package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"assessment-engine/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu        sync.Mutex
	byTier    map[domain.Difficulty][]domain.Question
	requested map[domain.Difficulty]int
	err       error
}

func (f *fakeCatalog) SampleQuestions(_ context.Context, _ string, tier domain.Difficulty, n int) ([]domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requested == nil {
		f.requested = make(map[domain.Difficulty]int)
	}
	f.requested[tier] = n
	if f.err != nil {
		return nil, f.err
	}
	qs := f.byTier[tier]
	if n < len(qs) {
		qs = qs[:n]
	}
	return qs, nil
}

func (f *fakeCatalog) GetQuestions(_ context.Context, _ string, ids []string) (map[string]domain.Question, error) {
	out := make(map[string]domain.Question)
	for _, qs := range f.byTier {
		for _, q := range qs {
			out[q.ID] = q
		}
	}
	return out, nil
}

func tierQuestions(tier domain.Difficulty, n int) []domain.Question {
	out := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Question{
			ID:         fmt.Sprintf("%s-%d", tier, i),
			Type:       domain.QuestionShortAnswer,
			Answer:     "x",
			Difficulty: tier,
			Domains:    []string{"mathematics"},
			Active:     true,
		})
	}
	return out
}

func testRegistry() *domain.Registry {
	return domain.NewRegistry(domain.DefaultDomains()...)
}

func TestPlanTiers(t *testing.T) {
	cases := []struct {
		name  string
		count int
		d     Distribution
		want  TierPlan
	}{
		{"default ten", 10, DefaultDistribution, TierPlan{5, 3, 2}},
		{"default three", 3, DefaultDistribution, TierPlan{2, 1, 0}},
		{"single question", 1, DefaultDistribution, TierPlan{1, 0, 0}},
		{"exact tenths", 10, Distribution{0.1, 0.1, 0.8}, TierPlan{1, 1, 8}},
		{"overshoot clamps intermediate", 10, Distribution{0.7, 0.7, 0}, TierPlan{7, 3, 0}},
		{"overshoot clamps beginner", 4, Distribution{2, 1, 0}, TierPlan{4, 0, 0}},
		{"advanced only", 5, Distribution{0, 0, 1}, TierPlan{0, 0, 5}},
		{"zero count", 0, DefaultDistribution, TierPlan{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PlanTiers(tc.count, tc.d)
			assert.Equal(t, tc.want, got)
			if tc.count > 0 {
				assert.Equal(t, tc.count, got.Total())
			}
		})
	}
}

func TestSampleComposesTiersInOrder(t *testing.T) {
	catalog := &fakeCatalog{byTier: map[domain.Difficulty][]domain.Question{
		domain.Beginner:     tierQuestions(domain.Beginner, 10),
		domain.Intermediate: tierQuestions(domain.Intermediate, 10),
		domain.Advanced:     tierQuestions(domain.Advanced, 10),
	}}
	sampler := NewSampler(catalog, testRegistry())

	sample, err := sampler.Sample(context.Background(), "mathematics", 10, DefaultDistribution)
	require.NoError(t, err)
	require.Len(t, sample.Questions, 10)
	assert.Zero(t, sample.Shortfall)
	assert.Equal(t, map[domain.Difficulty]int{
		domain.Beginner:     5,
		domain.Intermediate: 3,
		domain.Advanced:     2,
	}, catalog.requested)

	tiers := make([]domain.Difficulty, 0, len(sample.Questions))
	for _, q := range sample.Questions {
		tiers = append(tiers, q.Difficulty)
	}
	assert.Equal(t, []domain.Difficulty{
		domain.Beginner, domain.Beginner, domain.Beginner, domain.Beginner, domain.Beginner,
		domain.Intermediate, domain.Intermediate, domain.Intermediate,
		domain.Advanced, domain.Advanced,
	}, tiers)
}

func TestSampleDropsInactiveAndMistieredQuestions(t *testing.T) {
	inactive := tierQuestions(domain.Beginner, 1)[0]
	inactive.ID = "inactive"
	inactive.Active = false
	mistiered := tierQuestions(domain.Advanced, 1)[0]
	mistiered.ID = "mistiered"

	catalog := &fakeCatalog{byTier: map[domain.Difficulty][]domain.Question{
		domain.Beginner: append(tierQuestions(domain.Beginner, 2), inactive, mistiered),
	}}
	sampler := NewSampler(catalog, testRegistry())

	sample, err := sampler.Sample(context.Background(), "mathematics", 4, Distribution{Beginner: 1})
	require.NoError(t, err)
	require.Len(t, sample.Questions, 2)
	for _, q := range sample.Questions {
		assert.True(t, q.Active)
		assert.Equal(t, domain.Beginner, q.Difficulty)
	}
	assert.Equal(t, 2, sample.Shortfall)
}

func TestSampleReportsShortfall(t *testing.T) {
	catalog := &fakeCatalog{byTier: map[domain.Difficulty][]domain.Question{
		domain.Beginner: tierQuestions(domain.Beginner, 1),
		domain.Advanced: tierQuestions(domain.Advanced, 5),
	}}
	sampler := NewSampler(catalog, testRegistry())

	sample, err := sampler.Sample(context.Background(), "mathematics", 10, DefaultDistribution)
	require.NoError(t, err)
	assert.Len(t, sample.Questions, 3)
	assert.Equal(t, 7, sample.Shortfall)
	assert.Equal(t, TierPlan{5, 3, 2}, sample.Plan)
}

func TestSampleErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewSampler(&fakeCatalog{}, testRegistry()).Sample(ctx, "astrology", 10, DefaultDistribution)
	assert.ErrorIs(t, err, domain.ErrDomainNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	_, err = NewSampler(&fakeCatalog{}, testRegistry()).Sample(ctx, "physics", 10, DefaultDistribution)
	assert.ErrorIs(t, err, domain.ErrCatalogEmpty)

	_, err = NewSampler(&fakeCatalog{}, testRegistry()).Sample(ctx, "physics", 10, Distribution{Beginner: -1, Advanced: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidDistribution)

	_, err = NewSampler(&fakeCatalog{}, testRegistry()).Sample(ctx, "physics", 10, Distribution{})
	assert.ErrorIs(t, err, domain.ErrInvalidDistribution)

	boom := errors.New("catalog down")
	_, err = NewSampler(&fakeCatalog{err: boom}, testRegistry()).Sample(ctx, "physics", 10, DefaultDistribution)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
