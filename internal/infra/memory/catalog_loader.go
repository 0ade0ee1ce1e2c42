package memory

import (
	"context"
	"fmt"
	"os"

	"assessment-engine/internal/domain"
	"gopkg.in/yaml.v3"
)

// StaticCatalogLoader is a simple loader backed by an in-memory question list (useful for tests/demos).
type StaticCatalogLoader struct {
	questions []domain.Question
}

func NewStaticCatalogLoader(questions []domain.Question) *StaticCatalogLoader {
	return &StaticCatalogLoader{questions: questions}
}

// LoadCatalogFile reads a YAML document of the form `questions: [...]`.
func LoadCatalogFile(path string) (*StaticCatalogLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Questions []domain.Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	for i, q := range doc.Questions {
		if q.ID == "" {
			return nil, fmt.Errorf("parse catalog: question %d has no id", i)
		}
		if _, err := domain.NewAnswer(q.Type, ""); err != nil {
			return nil, fmt.Errorf("parse catalog: question %s: %w", q.ID, err)
		}
	}
	return NewStaticCatalogLoader(doc.Questions), nil
}

// LoadDomain returns every question that belongs to domainID.
func (l *StaticCatalogLoader) LoadDomain(_ context.Context, domainID string) ([]domain.Question, error) {
	out := make([]domain.Question, 0)
	for _, q := range l.questions {
		if q.InDomain(domainID) {
			out = append(out, q)
		}
	}
	return out, nil
}
