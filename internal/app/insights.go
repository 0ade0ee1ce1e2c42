package app

import "assessment-engine/internal/domain"

// TimingInsights derives rushed/struggled questions from recorded time. It
// returns nil when no question has any time recorded.
func TimingInsights(questions []domain.SessionQuestion) *domain.TimingInsights {
	var (
		total, timed     int
		fastest, slowest int
	)
	for _, sq := range questions {
		if sq.TimeSpent <= 0 {
			continue
		}
		if timed == 0 || sq.TimeSpent < fastest {
			fastest = sq.TimeSpent
		}
		if sq.TimeSpent > slowest {
			slowest = sq.TimeSpent
		}
		total += sq.TimeSpent
		timed++
	}
	if timed == 0 {
		return nil
	}

	mean := float64(total) / float64(timed)
	insights := &domain.TimingInsights{
		AverageTime:        mean,
		FastestTime:        fastest,
		SlowestTime:        slowest,
		RushedQuestions:    []string{},
		StruggledQuestions: []string{},
	}
	for _, sq := range questions {
		if sq.TimeSpent <= 0 {
			continue
		}
		t := float64(sq.TimeSpent)
		switch {
		case t < 0.5*mean:
			insights.RushedQuestions = append(insights.RushedQuestions, sq.QuestionID)
		case t > 2*mean:
			insights.StruggledQuestions = append(insights.StruggledQuestions, sq.QuestionID)
		}
	}
	return insights
}
