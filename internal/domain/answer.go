package domain

import (
	"fmt"
	"strings"
)

// Answer is a submitted answer, one variant per question type.
type Answer interface {
	QuestionType() QuestionType
	String() string
}

// ChoiceAnswer is the text of the selected multiple-choice option.
type ChoiceAnswer string

// TrueFalseAnswer is a bool-like string ("true", "False", ...).
type TrueFalseAnswer string

// TextAnswer is a free-form short answer.
type TextAnswer string

// CodeAnswer is source code left for an external evaluator.
type CodeAnswer string

func (a ChoiceAnswer) QuestionType() QuestionType { return QuestionMultipleChoice }
func (a TrueFalseAnswer) QuestionType() QuestionType { return QuestionTrueFalse }
func (a TextAnswer) QuestionType() QuestionType { return QuestionShortAnswer }
func (a CodeAnswer) QuestionType() QuestionType { return QuestionCoding }

func (a ChoiceAnswer) String() string { return string(a) }
func (a TrueFalseAnswer) String() string { return string(a) }
func (a TextAnswer) String() string { return string(a) }
func (a CodeAnswer) String() string { return string(a) }

// NewAnswer wraps a normalized answer value in the variant for qt. A
// true-false answer must be empty or spell true/false in any case.
func NewAnswer(qt QuestionType, value string) (Answer, error) {
	switch qt {
	case QuestionMultipleChoice:
		return ChoiceAnswer(value), nil
	case QuestionTrueFalse:
		if value != "" && !strings.EqualFold(value, "true") && !strings.EqualFold(value, "false") {
			return nil, Invalid("answer", fmt.Sprintf("must be true or false, got %q", value))
		}
		return TrueFalseAnswer(value), nil
	case QuestionShortAnswer:
		return TextAnswer(value), nil
	case QuestionCoding:
		return CodeAnswer(value), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownQuestionType, qt)
}

// SubmittedAnswer is one entry of a submission, already normalized by the transport.
type SubmittedAnswer struct {
	QuestionID       string `json:"questionId"`
	Answer           string `json:"answer"`
	TimeSpent        int    `json:"timeSpent"`
	ConfidenceLevel  int    `json:"confidenceLevel,omitempty"`
	AttemptCount     int    `json:"attemptCount,omitempty"`
	Skipped          bool   `json:"skipped,omitempty"`
	FlaggedForReview bool   `json:"flaggedForReview,omitempty"`
}

// Validate checks the shape of a single answer. Zero confidence and attempt
// count mean "not supplied".
func (a SubmittedAnswer) Validate() error {
	if strings.TrimSpace(a.QuestionID) == "" {
		return Invalid("questionId", "is required")
	}
	if a.TimeSpent < 0 {
		return Invalid("timeSpent", "must not be negative")
	}
	if a.ConfidenceLevel != 0 && (a.ConfidenceLevel < 1 || a.ConfidenceLevel > 5) {
		return Invalid("confidenceLevel", "must be between 1 and 5")
	}
	if a.AttemptCount < 0 {
		return Invalid("attemptCount", "must be at least 1")
	}
	return nil
}

// ValidateAnswers checks every answer and rejects duplicate question ids.
func ValidateAnswers(answers []SubmittedAnswer) error {
	seen := make(map[string]struct{}, len(answers))
	for i, a := range answers {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("answers[%d]: %w", i, err)
		}
		if _, dup := seen[a.QuestionID]; dup {
			return Invalid("answers", fmt.Sprintf("duplicate answer for question %q", a.QuestionID))
		}
		seen[a.QuestionID] = struct{}{}
	}
	return nil
}
