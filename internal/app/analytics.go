package app

import (
	"context"
	"fmt"
	"math"

	"assessment-engine/internal/domain"
)

const recentPerformanceSize = 10

// UserAnalytics summarizes the user's most recent sessions, optionally within
// one domain.
func (s *AssessmentService) UserAnalytics(ctx context.Context, userID, domainID string) (domain.UserAnalytics, error) {
	if domainID != "" && !s.registry.Has(domainID) {
		return domain.UserAnalytics{}, fmt.Errorf("%w: %q", domain.ErrInvalidDomain, domainID)
	}
	sessions, err := s.sessions.ListByUser(ctx, userID, domain.HistoryFilter{Domain: domainID, Limit: analyticsWindow})
	if err != nil {
		return domain.UserAnalytics{}, fmt.Errorf("list sessions: %w", err)
	}
	return summarizeUser(sessions), nil
}

// DomainStatistics summarizes every completed session in a domain. A domain
// without completed sessions yields a zeroed record.
func (s *AssessmentService) DomainStatistics(ctx context.Context, domainID string) (domain.DomainStatistics, error) {
	if !s.registry.Has(domainID) {
		return domain.DomainStatistics{}, fmt.Errorf("%w: %q", domain.ErrInvalidDomain, domainID)
	}
	sessions, err := s.sessions.ListCompleted(ctx, domainID)
	if err != nil {
		return domain.DomainStatistics{}, fmt.Errorf("list completed sessions: %w", err)
	}
	return summarizeDomain(domainID, sessions), nil
}

// summarizeUser expects sessions newest first.
func summarizeUser(sessions []domain.Session) domain.UserAnalytics {
	out := domain.UserAnalytics{
		TotalTests:        len(sessions),
		Domains:           []string{},
		RecentPerformance: []domain.RecentPerformance{},
	}
	if len(sessions) == 0 {
		return out
	}

	seen := make(map[string]struct{})
	sum := 0
	for _, s := range sessions {
		sum += s.Percentage
		if s.Status == domain.StatusCompleted {
			out.CompletedTests++
		}
		if _, ok := seen[s.Domain]; !ok {
			seen[s.Domain] = struct{}{}
			out.Domains = append(out.Domains, s.Domain)
		}
	}
	out.AverageScore = round2(float64(sum) / float64(len(sessions)))

	for i, s := range sessions {
		if i == recentPerformanceSize {
			break
		}
		out.RecentPerformance = append(out.RecentPerformance, domain.RecentPerformance{
			SessionID:   s.ID,
			Domain:      s.Domain,
			Percentage:  s.Percentage,
			CompletedAt: s.CompletedAt,
		})
	}
	return out
}

func summarizeDomain(domainID string, sessions []domain.Session) domain.DomainStatistics {
	out := domain.DomainStatistics{Domain: domainID}
	scoreSum, timeSum := 0, 0
	for _, s := range sessions {
		if s.Status != domain.StatusCompleted {
			continue
		}
		if out.TotalTests == 0 || s.Percentage > out.HighestScore {
			out.HighestScore = s.Percentage
		}
		if out.TotalTests == 0 || s.Percentage < out.LowestScore {
			out.LowestScore = s.Percentage
		}
		scoreSum += s.Percentage
		timeSum += s.TotalTimeSpent
		out.TotalTests++
	}
	if out.TotalTests == 0 {
		return out
	}
	out.AvgScore = round2(float64(scoreSum) / float64(out.TotalTests))
	out.AvgTime = round2(float64(timeSum) / float64(out.TotalTests))
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
