package app

import (
	"context"
	"fmt"
	"math"

	"assessment-engine/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Distribution weights the three difficulty tiers. Weights need not sum to
// exactly 1; rounding error is absorbed by the advanced tier.
type Distribution struct {
	Beginner     float64 `json:"beginner" yaml:"beginner"`
	Intermediate float64 `json:"intermediate" yaml:"intermediate"`
	Advanced     float64 `json:"advanced" yaml:"advanced"`
}

// DefaultDistribution is used when no distribution is configured.
var DefaultDistribution = Distribution{Beginner: 0.5, Intermediate: 0.3, Advanced: 0.2}

// Validate rejects negative weights and an all-zero distribution.
func (d Distribution) Validate() error {
	if d.Beginner < 0 || d.Intermediate < 0 || d.Advanced < 0 {
		return fmt.Errorf("%w: weights must not be negative", domain.ErrInvalidDistribution)
	}
	if d.Beginner+d.Intermediate+d.Advanced == 0 {
		return fmt.Errorf("%w: at least one weight must be positive", domain.ErrInvalidDistribution)
	}
	return nil
}

// TierPlan is the number of questions requested per tier.
type TierPlan struct {
	Beginner     int `json:"beginner"`
	Intermediate int `json:"intermediate"`
	Advanced     int `json:"advanced"`
}

// Total returns the sum of all tiers.
func (p TierPlan) Total() int { return p.Beginner + p.Intermediate + p.Advanced }

func (p TierPlan) count(tier domain.Difficulty) int {
	switch tier {
	case domain.Beginner:
		return p.Beginner
	case domain.Intermediate:
		return p.Intermediate
	}
	return p.Advanced
}

// PlanTiers splits count across tiers: beginner and intermediate are ceiled,
// advanced takes the remainder. When the first two ceilings overshoot, they are
// clamped so the plan never exceeds count and no tier is negative.
func PlanTiers(count int, d Distribution) TierPlan {
	if count <= 0 {
		return TierPlan{}
	}
	beginner := ceilCount(float64(count) * d.Beginner)
	intermediate := ceilCount(float64(count) * d.Intermediate)

	beginner = clamp(beginner, 0, count)
	intermediate = clamp(intermediate, 0, count-beginner)
	return TierPlan{
		Beginner:     beginner,
		Intermediate: intermediate,
		Advanced:     count - beginner - intermediate,
	}
}

// ceilCount ignores float noise such as 7.000000000000001.
func ceilCount(v float64) int {
	return int(math.Ceil(v - 1e-9))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Sample is a sampler draw.
type Sample struct {
	Questions []domain.Question
	Plan      TierPlan
	// Shortfall is how many planned questions the catalog could not supply.
	Shortfall int
}

// Sampler draws difficulty-weighted batches of questions from a catalog.
type Sampler struct {
	catalog  QuestionCatalog
	registry *domain.Registry
}

func NewSampler(catalog QuestionCatalog, registry *domain.Registry) *Sampler {
	return &Sampler{catalog: catalog, registry: registry}
}

// Sample draws count questions for domainID. Each tier is fetched concurrently;
// the result is always ordered beginner, intermediate, advanced.
func (s *Sampler) Sample(ctx context.Context, domainID string, count int, d Distribution) (Sample, error) {
	if !s.registry.Has(domainID) {
		return Sample{}, fmt.Errorf("%w: %q", domain.ErrDomainNotFound, domainID)
	}
	if err := d.Validate(); err != nil {
		return Sample{}, err
	}

	plan := PlanTiers(count, d)
	batches := make([][]domain.Question, len(domain.Tiers))

	g, gctx := errgroup.WithContext(ctx)
	for i, tier := range domain.Tiers {
		i, tier := i, tier
		n := plan.count(tier)
		if n == 0 {
			continue
		}
		g.Go(func() error {
			qs, err := s.catalog.SampleQuestions(gctx, domainID, tier, n)
			if err != nil {
				return fmt.Errorf("sample %s questions: %w", tier, err)
			}
			batches[i] = qs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Sample{}, err
	}

	out := Sample{Plan: plan, Questions: make([]domain.Question, 0, plan.Total())}
	for i, tier := range domain.Tiers {
		for _, q := range batches[i] {
			if !q.Active || q.Difficulty != tier {
				continue
			}
			out.Questions = append(out.Questions, q)
		}
	}
	out.Shortfall = plan.Total() - len(out.Questions)
	if len(out.Questions) == 0 {
		return out, fmt.Errorf("%w: domain %q", domain.ErrCatalogEmpty, domainID)
	}
	return out, nil
}
