package cli

import (
	"context"
	"testing"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
	"assessment-engine/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleCatalogFillsDefaultSession(t *testing.T) {
	registry := domain.NewRegistry(domain.DefaultDomains()...)
	seen := map[string]bool{}
	for _, q := range sampleCatalog() {
		assert.False(t, seen[q.ID], "duplicate id %s", q.ID)
		seen[q.ID] = true
		_, err := domain.NewAnswer(q.Type, "")
		assert.NoError(t, err, q.ID)
		for _, d := range q.Domains {
			assert.True(t, registry.Has(d), "%s has unknown domain %s", q.ID, d)
		}
	}

	catalog := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(sampleCatalog()), time.Minute)
	sampler := app.NewSampler(catalog, registry)
	sample, err := sampler.Sample(context.Background(), "mathematics", app.DefaultQuestionCount, app.DefaultDistribution)
	require.NoError(t, err)
	assert.Len(t, sample.Questions, app.DefaultQuestionCount)
	assert.Zero(t, sample.Shortfall)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["start"])
	assert.True(t, names["migrate"])
}
