package domain

import (
	"math"
	"time"
)

// QuestionType selects the scoring rule applied to a question.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
	QuestionShortAnswer    QuestionType = "short-answer"
	QuestionCoding         QuestionType = "coding"
)

// Difficulty is the tier a question is sampled from.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Tiers lists difficulties in sampling order.
var Tiers = []Difficulty{Beginner, Intermediate, Advanced}

// TestType is the kind of test a session represents.
type TestType string

const (
	TestDiagnostic      TestType = "diagnostic"
	TestModuleQuiz      TestType = "module-quiz"
	TestPractice        TestType = "practice"
	TestFinalAssessment TestType = "final-assessment"
)

// Valid reports whether t is one of the known test types.
func (t TestType) Valid() bool {
	switch t {
	case TestDiagnostic, TestModuleQuiz, TestPractice, TestFinalAssessment:
		return true
	}
	return false
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in-progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Option represents a possible answer for a multiple-choice question.
type Option struct {
	Text      string `json:"text" yaml:"text"`
	IsCorrect bool   `json:"isCorrect" yaml:"isCorrect"`
}

// Question is catalog content. The engine never mutates it.
type Question struct {
	ID          string       `json:"id" yaml:"id"`
	Text        string       `json:"text" yaml:"text"`
	Type        QuestionType `json:"type" yaml:"type"`
	Options     []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	Answer      string       `json:"answer,omitempty" yaml:"answer,omitempty"`
	Difficulty  Difficulty   `json:"difficulty" yaml:"difficulty"`
	Points      int          `json:"points" yaml:"points"` // defaults to 1 if zero
	Domains     []string     `json:"domains" yaml:"domains"`
	Active      bool         `json:"active" yaml:"active"`
	Explanation string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// PointValue returns the points awarded for a correct answer.
func (q Question) PointValue() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// InDomain reports whether the question belongs to domainID.
func (q Question) InDomain(domainID string) bool {
	for _, d := range q.Domains {
		if d == domainID {
			return true
		}
	}
	return false
}

// CorrectAnswer returns the canonical answer text used for comparison.
func (q Question) CorrectAnswer() string {
	switch q.Type {
	case QuestionMultipleChoice:
		for _, opt := range q.Options {
			if opt.IsCorrect {
				return opt.Text
			}
		}
		return ""
	case QuestionTrueFalse:
		if q.Answer == "" {
			return "true"
		}
		return q.Answer
	default:
		return q.Answer
	}
}

// Public strips correctness data from a question.
func (q Question) Public() PublicQuestion {
	pq := PublicQuestion{
		ID:         q.ID,
		Text:       q.Text,
		Type:       q.Type,
		Difficulty: q.Difficulty,
		Points:     q.PointValue(),
	}
	for _, opt := range q.Options {
		pq.Options = append(pq.Options, opt.Text)
	}
	return pq
}

// PublicQuestion is what a test taker sees.
type PublicQuestion struct {
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	Type       QuestionType `json:"type"`
	Options    []string     `json:"options,omitempty"`
	Difficulty Difficulty   `json:"difficulty"`
	Points     int          `json:"points"`
}

// SessionQuestion is the per-question attempt record embedded in a Session.
type SessionQuestion struct {
	QuestionID       string     `json:"questionId"`
	Difficulty       Difficulty `json:"difficulty"`
	Points           int        `json:"points"`
	UserAnswer       string     `json:"userAnswer,omitempty"`
	IsCorrect        *bool      `json:"isCorrect"`
	TimeSpent        int        `json:"timeSpent"`
	PointsEarned     int        `json:"pointsEarned"`
	ConfidenceLevel  int        `json:"confidenceLevel,omitempty"`
	AttemptCount     int        `json:"attemptCount"`
	Skipped          bool       `json:"skipped"`
	FlaggedForReview bool       `json:"flaggedForReview"`
	AnsweredAt       *time.Time `json:"answerTimestamp,omitempty"`
}

// Session is one attempt at a set of questions. It is the unit of consistency:
// session questions are only ever written together with it.
type Session struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	Domain          string            `json:"domain"`
	TestType        TestType          `json:"testType"`
	Questions       []SessionQuestion `json:"questions"`
	Score           int               `json:"score"`
	MaxScore        int               `json:"maxScore"`
	TotalQuestions  int               `json:"totalQuestions"`
	CorrectAnswers  int               `json:"correctAnswers"`
	Percentage      int               `json:"percentage"`
	Status          SessionStatus     `json:"status"`
	StartedAt       time.Time         `json:"startedAt"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty"`
	TotalTimeSpent  int               `json:"totalTimeSpent"`
	Recommendations []Recommendation  `json:"recommendations"`
}

// NewSession builds an in-progress session over the sampled questions.
func NewSession(id, userID, domainID string, testType TestType, questions []Question, startedAt time.Time) Session {
	s := Session{
		ID:              id,
		UserID:          userID,
		Domain:          domainID,
		TestType:        testType,
		Questions:       make([]SessionQuestion, 0, len(questions)),
		TotalQuestions:  len(questions),
		Status:          StatusInProgress,
		StartedAt:       startedAt,
		Recommendations: []Recommendation{},
	}
	for _, q := range questions {
		s.Questions = append(s.Questions, SessionQuestion{
			QuestionID: q.ID,
			Difficulty: q.Difficulty,
			Points:     q.PointValue(),
		})
		s.MaxScore += q.PointValue()
	}
	return s
}

// Recompute derives CorrectAnswers, Score and Percentage from the session questions.
func (s *Session) Recompute() {
	correct, score := 0, 0
	for _, sq := range s.Questions {
		if sq.IsCorrect != nil && *sq.IsCorrect {
			correct++
		}
		score += sq.PointsEarned
	}
	s.CorrectAnswers = correct
	s.Score = score
	s.Percentage = Percentage(correct, s.TotalQuestions)
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s Session) Clone() Session {
	out := s
	out.Questions = make([]SessionQuestion, len(s.Questions))
	for i, sq := range s.Questions {
		if sq.IsCorrect != nil {
			v := *sq.IsCorrect
			sq.IsCorrect = &v
		}
		if sq.AnsweredAt != nil {
			t := *sq.AnsweredAt
			sq.AnsweredAt = &t
		}
		out.Questions[i] = sq
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	out.Recommendations = make([]Recommendation, len(s.Recommendations))
	for i, rec := range s.Recommendations {
		rec.Modules = append([]string(nil), rec.Modules...)
		out.Recommendations[i] = rec
	}
	return out
}

// Percentage returns round(correct/total*100), or 0 for an empty session.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// CreatedSession is returned when a session starts. Shortfall counts the
// requested questions the catalog could not supply.
type CreatedSession struct {
	SessionID          string           `json:"sessionId"`
	Questions          []PublicQuestion `json:"questions"`
	TotalQuestions     int              `json:"totalQuestions"`
	RequestedQuestions int              `json:"requestedQuestions"`
	Shortfall          int              `json:"shortfall"`
	TimeLimit          int              `json:"timeLimit"`
	Domain             string           `json:"domain"`
	TestType           TestType         `json:"testType"`
}

// HistoryFilter narrows a user's session listing.
type HistoryFilter struct {
	Domain   string
	TestType TestType
	Limit    int
}

// Matches reports whether s passes the domain and test type filters.
func (f HistoryFilter) Matches(s Session) bool {
	if f.Domain != "" && s.Domain != f.Domain {
		return false
	}
	if f.TestType != "" && s.TestType != f.TestType {
		return false
	}
	return true
}
