package domain

import "time"

// Level is the proficiency band a recommendation targets.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Recommendation is the leveled module list attached to a completed session.
type Recommendation struct {
	Domain  string   `json:"domain"`
	Level   Level    `json:"level"`
	Modules []string `json:"modules"`
}

// QuestionResult is the per-question outcome of a submission.
type QuestionResult struct {
	QuestionID     string       `json:"questionId"`
	QuestionText   string       `json:"questionText"`
	Type           QuestionType `json:"type"`
	UserAnswer     string       `json:"userAnswer"`
	CorrectAnswer  string       `json:"correctAnswer"`
	IsCorrect      bool         `json:"isCorrect"`
	Scored         bool         `json:"scored"`
	Points         int          `json:"points"`
	PointsPossible int          `json:"pointsPossible"`
	TimeSpent      int          `json:"timeSpent"`
	Explanation    string       `json:"explanation,omitempty"`
}

// TimingInsights summarizes how time was spent across answered questions.
type TimingInsights struct {
	AverageTime        float64  `json:"averageTime"`
	FastestTime        int      `json:"fastestTime"`
	SlowestTime        int      `json:"slowestTime"`
	RushedQuestions    []string `json:"rushedQuestions"`
	StruggledQuestions []string `json:"struggledQuestions"`
}

// ScoredResult is the outcome of submitting a session.
type ScoredResult struct {
	SessionID       string           `json:"sessionId"`
	Domain          string           `json:"domain"`
	TestType        TestType         `json:"testType"`
	Score           int              `json:"score"`
	MaxScore        int              `json:"maxScore"`
	TotalQuestions  int              `json:"totalQuestions"`
	CorrectAnswers  int              `json:"correctAnswers"`
	Percentage      int              `json:"percentage"`
	TotalTimeSpent  int              `json:"totalTimeSpent"`
	Status          SessionStatus    `json:"status"`
	CompletedAt     time.Time        `json:"completedAt"`
	Results         []QuestionResult `json:"results"`
	Insights        *TimingInsights  `json:"insights"`
	Recommendations []Recommendation `json:"recommendations"`
}

// RecentPerformance is one entry of a user's recent results.
type RecentPerformance struct {
	SessionID   string     `json:"sessionId"`
	Domain      string     `json:"domain"`
	Percentage  int        `json:"percentage"`
	CompletedAt *time.Time `json:"completedAt"`
}

// UserAnalytics aggregates a user's recent sessions.
type UserAnalytics struct {
	TotalTests        int                 `json:"totalTests"`
	AverageScore      float64             `json:"averageScore"`
	CompletedTests    int                 `json:"completedTests"`
	Domains           []string            `json:"domains"`
	RecentPerformance []RecentPerformance `json:"recentPerformance"`
}

// DomainStatistics aggregates completed sessions in one domain.
type DomainStatistics struct {
	Domain       string  `json:"domain"`
	TotalTests   int     `json:"totalTests"`
	AvgScore     float64 `json:"avgScore"`
	AvgTime      float64 `json:"avgTime"`
	HighestScore int     `json:"highestScore"`
	LowestScore  int     `json:"lowestScore"`
}

// EventType names a session lifecycle transition.
type EventType string

const (
	EventSessionCreated   EventType = "session.created"
	EventSessionCompleted EventType = "session.completed"
	EventSessionAbandoned EventType = "session.abandoned"
)

// SessionEvent is pushed to a user's live subscribers.
type SessionEvent struct {
	Type       EventType `json:"type"`
	SessionID  string    `json:"sessionId"`
	UserID     string    `json:"userId"`
	Domain     string    `json:"domain,omitempty"`
	Percentage int       `json:"percentage,omitempty"`
	At         time.Time `json:"at"`
}
