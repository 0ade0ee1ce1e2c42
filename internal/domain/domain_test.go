package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Invalid("answers", "bad"), KindValidation},
		{fmt.Errorf("wrapped: %w", ErrInvalidDomain), KindValidation},
		{ErrInvalidTestType, KindValidation},
		{ErrInvalidQuestionCount, KindValidation},
		{ErrInvalidDistribution, KindValidation},
		{fmt.Errorf("answers[0]: %w", Invalid("timeSpent", "must not be negative")), KindValidation},
		{ErrSessionNotFound, KindNotFound},
		{fmt.Errorf("sample: %w", ErrDomainNotFound), KindNotFound},
		{ErrSessionNotInProgress, KindConflict},
		{ErrCatalogEmpty, KindCatalog},
		{fmt.Errorf("%w: empty", ErrNoQuestionsAvailable), KindCatalog},
		{errors.New("connection refused"), KindInternal},
		{nil, KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, KindOf(tc.err), "%v", tc.err)
	}
	assert.Equal(t, "state_conflict", KindConflict.String())
	assert.Equal(t, "internal_error", KindInternal.String())
}

func TestNewAnswer(t *testing.T) {
	a, err := NewAnswer(QuestionMultipleChoice, "Paris")
	require.NoError(t, err)
	assert.Equal(t, ChoiceAnswer("Paris"), a)
	assert.Equal(t, QuestionMultipleChoice, a.QuestionType())

	for _, qt := range []QuestionType{QuestionShortAnswer, QuestionCoding} {
		a, err := NewAnswer(qt, "x")
		require.NoError(t, err)
		assert.Equal(t, qt, a.QuestionType())
		assert.Equal(t, "x", a.String())
	}

	for _, v := range []string{"", "true", "FALSE", "True"} {
		a, err := NewAnswer(QuestionTrueFalse, v)
		require.NoError(t, err, v)
		assert.Equal(t, TrueFalseAnswer(v), a)
	}
	for _, v := range []string{"x", "yes", "1", " true"} {
		_, err := NewAnswer(QuestionTrueFalse, v)
		assert.Equal(t, KindValidation, KindOf(err), v)
	}

	_, err = NewAnswer("essay", "x")
	assert.ErrorIs(t, err, ErrUnknownQuestionType)
}

func TestValidateAnswers(t *testing.T) {
	assert.NoError(t, ValidateAnswers(nil))
	assert.NoError(t, ValidateAnswers([]SubmittedAnswer{
		{QuestionID: "q1", Answer: "A", TimeSpent: 10, ConfidenceLevel: 5, AttemptCount: 2},
		{QuestionID: "q2"},
	}))

	bad := []SubmittedAnswer{
		{QuestionID: " "},
		{QuestionID: "q1", TimeSpent: -1},
		{QuestionID: "q1", ConfidenceLevel: -1},
		{QuestionID: "q1", ConfidenceLevel: 6},
		{QuestionID: "q1", AttemptCount: -2},
	}
	for _, a := range bad {
		err := ValidateAnswers([]SubmittedAnswer{a})
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "%+v", a)
	}

	err := ValidateAnswers([]SubmittedAnswer{{QuestionID: "q1"}, {QuestionID: "q1"}})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, err.Error(), "duplicate")
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 70, Percentage(7, 10))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 100, Percentage(3, 3))
}

func TestQuestionHelpers(t *testing.T) {
	mc := Question{
		ID:      "q1",
		Type:    QuestionMultipleChoice,
		Options: []Option{{Text: "A"}, {Text: "B", IsCorrect: true}, {Text: "C", IsCorrect: true}},
		Domains: []string{"mathematics", "physics"},
	}
	assert.Equal(t, "B", mc.CorrectAnswer())
	assert.Equal(t, 1, mc.PointValue())
	assert.True(t, mc.InDomain("physics"))
	assert.False(t, mc.InDomain("biology"))

	public := mc.Public()
	assert.Equal(t, []string{"A", "B", "C"}, public.Options)
	assert.Equal(t, 1, public.Points)

	assert.Equal(t, "true", Question{Type: QuestionTrueFalse}.CorrectAnswer())
	assert.Equal(t, "False", Question{Type: QuestionTrueFalse, Answer: "False"}.CorrectAnswer())
	assert.Equal(t, 4, Question{Points: 4}.PointValue())
}

func TestSessionRecomputeAndClone(t *testing.T) {
	questions := []Question{
		{ID: "q1", Difficulty: Beginner, Points: 1},
		{ID: "q2", Difficulty: Intermediate, Points: 2},
		{ID: "q3", Difficulty: Advanced},
	}
	s := NewSession("s1", "u1", "mathematics", TestPractice, questions, time.Now())
	assert.Equal(t, 3, s.TotalQuestions)
	assert.Equal(t, 4, s.MaxScore)
	assert.Equal(t, StatusInProgress, s.Status)

	yes, no := true, false
	s.Questions[0].IsCorrect, s.Questions[0].PointsEarned = &yes, 1
	s.Questions[1].IsCorrect, s.Questions[1].PointsEarned = &yes, 2
	s.Questions[2].IsCorrect = &no
	s.Recompute()
	assert.Equal(t, 2, s.CorrectAnswers)
	assert.Equal(t, 3, s.Score)
	assert.Equal(t, 67, s.Percentage)

	clone := s.Clone()
	*clone.Questions[0].IsCorrect = false
	clone.Questions[1].UserAnswer = "changed"
	assert.True(t, *s.Questions[0].IsCorrect)
	assert.Empty(t, s.Questions[1].UserAnswer)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(
		DomainInfo{ID: "a", Name: "A"},
		DomainInfo{ID: "b", Name: "B"},
		DomainInfo{ID: "a", Name: "duplicate"},
		DomainInfo{Name: "no id"},
	)
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
	assert.Equal(t, []DomainInfo{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, r.List())

	list := r.List()
	list[0].Name = "mutated"
	assert.Equal(t, "A", r.List()[0].Name)
}

func TestHistoryFilterMatches(t *testing.T) {
	s := Session{Domain: "mathematics", TestType: TestPractice}
	assert.True(t, HistoryFilter{}.Matches(s))
	assert.True(t, HistoryFilter{Domain: "mathematics", TestType: TestPractice}.Matches(s))
	assert.False(t, HistoryFilter{Domain: "physics"}.Matches(s))
	assert.False(t, HistoryFilter{TestType: TestDiagnostic}.Matches(s))
}
