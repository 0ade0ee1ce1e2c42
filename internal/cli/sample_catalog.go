package cli

import "assessment-engine/internal/domain"

// sampleCatalog is served when neither Postgres nor a catalog file is configured.
func sampleCatalog() []domain.Question {
	math := []string{"mathematics"}
	return []domain.Question{
		{
			ID:   "math-b1",
			Text: "What is 7 x 8?",
			Type: domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "54"},
				{Text: "56", IsCorrect: true},
				{Text: "64"},
			},
			Difficulty: domain.Beginner,
			Points:     1,
			Domains:    math,
			Active:     true,
		},
		{
			ID:          "math-b2",
			Text:        "Every prime number is odd.",
			Type:        domain.QuestionTrueFalse,
			Answer:      "false",
			Difficulty:  domain.Beginner,
			Points:      1,
			Domains:     math,
			Active:      true,
			Explanation: "2 is prime and even.",
		},
		{
			ID:         "math-b3",
			Text:       "What is 15% of 200?",
			Type:       domain.QuestionShortAnswer,
			Answer:     "30",
			Difficulty: domain.Beginner,
			Points:     1,
			Domains:    math,
			Active:     true,
		},
		{
			ID:   "math-b4",
			Text: "Which fraction equals 0.25?",
			Type: domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "1/4", IsCorrect: true},
				{Text: "1/3"},
				{Text: "2/5"},
			},
			Difficulty: domain.Beginner,
			Points:     1,
			Domains:    math,
			Active:     true,
		},
		{
			ID:         "math-b5",
			Text:       "Round 3.46 to one decimal place.",
			Type:       domain.QuestionShortAnswer,
			Answer:     "3.5",
			Difficulty: domain.Beginner,
			Points:     1,
			Domains:    math,
			Active:     true,
		},
		{
			ID:         "math-i1",
			Text:       "Solve for x: 3x + 5 = 20.",
			Type:       domain.QuestionShortAnswer,
			Answer:     "5",
			Difficulty: domain.Intermediate,
			Points:     2,
			Domains:    math,
			Active:     true,
		},
		{
			ID:   "math-i2",
			Text: "What is the slope of y = -2x + 7?",
			Type: domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "7"},
				{Text: "-2", IsCorrect: true},
				{Text: "2"},
			},
			Difficulty: domain.Intermediate,
			Points:     2,
			Domains:    math,
			Active:     true,
		},
		{
			ID:         "math-i3",
			Text:       "The sum of interior angles of a hexagon is 720 degrees.",
			Type:       domain.QuestionTrueFalse,
			Answer:     "true",
			Difficulty: domain.Intermediate,
			Points:     2,
			Domains:    math,
			Active:     true,
		},
		{
			ID:         "math-a1",
			Text:       "What is the derivative of x^3?",
			Type:       domain.QuestionShortAnswer,
			Answer:     "3x^2",
			Difficulty: domain.Advanced,
			Points:     3,
			Domains:    math,
			Active:     true,
		},
		{
			ID:         "math-a2",
			Text:       "Write a function that returns the nth Fibonacci number.",
			Type:       domain.QuestionCoding,
			Difficulty: domain.Advanced,
			Points:     3,
			Domains:    []string{"mathematics", "computer-science"},
			Active:     true,
		},
		{
			ID:   "cs-b1",
			Text: "Which data structure is first-in, first-out?",
			Type: domain.QuestionMultipleChoice,
			Options: []domain.Option{
				{Text: "Stack"},
				{Text: "Queue", IsCorrect: true},
			},
			Difficulty: domain.Beginner,
			Points:     1,
			Domains:    []string{"computer-science"},
			Active:     true,
		},
	}
}
