package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assessment-engine/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultConfidence   = 3
	defaultAttemptCount = 1
)

// SubmitRequest carries a user's answers for one session.
type SubmitRequest struct {
	SessionID      string
	UserID         string
	Answers        []domain.SubmittedAnswer
	TotalTimeSpent int
}

// Submit scores the answers, attaches a recommendation and completes the
// session in a single conditional write.
func (s *AssessmentService) Submit(ctx context.Context, req SubmitRequest) (domain.ScoredResult, error) {
	if req.Answers == nil {
		return domain.ScoredResult{}, domain.Invalid("answers", "is required")
	}
	if err := domain.ValidateAnswers(req.Answers); err != nil {
		return domain.ScoredResult{}, err
	}
	if req.TotalTimeSpent < 0 {
		return domain.ScoredResult{}, domain.Invalid("totalTimeSpent", "must not be negative")
	}

	session, err := s.GetSession(ctx, req.SessionID, req.UserID)
	if err != nil {
		return domain.ScoredResult{}, err
	}
	if session.Status != domain.StatusInProgress {
		return domain.ScoredResult{}, fmt.Errorf("%w: status is %s", domain.ErrSessionNotInProgress, session.Status)
	}

	ids := make([]string, 0, len(session.Questions))
	for _, sq := range session.Questions {
		ids = append(ids, sq.QuestionID)
	}
	canonical, err := s.catalog.GetQuestions(ctx, session.Domain, ids)
	if err != nil {
		return domain.ScoredResult{}, fmt.Errorf("load canonical answers: %w", err)
	}

	byID := make(map[string]domain.SubmittedAnswer, len(req.Answers))
	for _, a := range req.Answers {
		byID[a.QuestionID] = a
	}

	now := s.now()
	results := make([]domain.QuestionResult, 0, len(session.Questions))
	for i := range session.Questions {
		sq := &session.Questions[i]
		question, known := canonical[sq.QuestionID]
		submitted, answered := byID[sq.QuestionID]

		result := domain.QuestionResult{
			QuestionID:     sq.QuestionID,
			PointsPossible: sq.Points,
		}
		if known {
			result.QuestionText = question.Text
			result.Type = question.Type
			result.CorrectAnswer = question.CorrectAnswer()
			result.Explanation = question.Explanation
			result.PointsPossible = question.PointValue()
		}
		if !known || !answered {
			results = append(results, result)
			continue
		}

		answer, err := domain.NewAnswer(question.Type, submitted.Answer)
		if domain.KindOf(err) == domain.KindValidation {
			return domain.ScoredResult{}, fmt.Errorf("question %s: %w", question.ID, err)
		}
		if err != nil {
			s.logger.Warn("skipping question with unsupported type",
				zap.String("session_id", session.ID),
				zap.String("question_id", question.ID),
				zap.Error(err),
			)
			results = append(results, result)
			continue
		}

		applyAnswer(sq, submitted, now)
		correct, scored := scoreAnswer(question, answer)
		if scored {
			sq.IsCorrect = &correct
			if correct {
				sq.PointsEarned = question.PointValue()
			}
		}

		result.UserAnswer = answer.String()
		result.IsCorrect = correct
		result.Scored = scored
		result.Points = sq.PointsEarned
		result.TimeSpent = sq.TimeSpent
		results = append(results, result)
	}

	session.Recompute()
	session.Status = domain.StatusCompleted
	session.CompletedAt = &now
	session.TotalTimeSpent = req.TotalTimeSpent
	recommendation := Recommend(session.Percentage, session.Domain, results)
	session.Recommendations = append(session.Recommendations, recommendation)

	changed, err := s.sessions.Complete(ctx, session)
	if err != nil {
		return domain.ScoredResult{}, fmt.Errorf("persist scored session: %w", err)
	}
	if !changed {
		s.logger.Warn("lost conditional write on submit", zap.String("session_id", session.ID))
		return domain.ScoredResult{}, fmt.Errorf("%w: session changed during submission", domain.ErrSessionNotInProgress)
	}

	s.metrics.SessionCompleted(session.Domain, session.Percentage)
	s.events.Publish(domain.SessionEvent{
		Type:       domain.EventSessionCompleted,
		SessionID:  session.ID,
		UserID:     session.UserID,
		Domain:     session.Domain,
		Percentage: session.Percentage,
		At:         now,
	})
	s.logger.Info("session scored",
		zap.String("session_id", session.ID),
		zap.Int("correct", session.CorrectAnswers),
		zap.Int("total", session.TotalQuestions),
		zap.Int("percentage", session.Percentage),
		zap.String("level", string(recommendation.Level)),
	)

	return domain.ScoredResult{
		SessionID:       session.ID,
		Domain:          session.Domain,
		TestType:        session.TestType,
		Score:           session.Score,
		MaxScore:        session.MaxScore,
		TotalQuestions:  session.TotalQuestions,
		CorrectAnswers:  session.CorrectAnswers,
		Percentage:      session.Percentage,
		TotalTimeSpent:  session.TotalTimeSpent,
		Status:          session.Status,
		CompletedAt:     now,
		Results:         results,
		Insights:        TimingInsights(session.Questions),
		Recommendations: session.Recommendations,
	}, nil
}

func applyAnswer(sq *domain.SessionQuestion, submitted domain.SubmittedAnswer, at time.Time) {
	sq.UserAnswer = submitted.Answer
	sq.TimeSpent = submitted.TimeSpent
	sq.ConfidenceLevel = submitted.ConfidenceLevel
	if sq.ConfidenceLevel == 0 {
		sq.ConfidenceLevel = defaultConfidence
	}
	sq.AttemptCount = submitted.AttemptCount
	if sq.AttemptCount == 0 {
		sq.AttemptCount = defaultAttemptCount
	}
	sq.Skipped = submitted.Skipped
	sq.FlaggedForReview = submitted.FlaggedForReview
	sq.AnsweredAt = &at
}

// scoreAnswer applies the per-type correctness rule. scored is false for
// answers this engine does not grade.
func scoreAnswer(q domain.Question, answer domain.Answer) (correct, scored bool) {
	expected := q.CorrectAnswer()
	switch a := answer.(type) {
	case domain.ChoiceAnswer:
		return expected != "" && string(a) == expected, true
	case domain.TrueFalseAnswer:
		return strings.EqualFold(string(a), expected), true
	case domain.TextAnswer:
		given := strings.TrimSpace(string(a))
		// A blank answer never matches, even an empty canonical answer.
		return given != "" && strings.EqualFold(given, strings.TrimSpace(expected)), true
	case domain.CodeAnswer:
		return false, false
	}
	return false, false
}
