package app

import "assessment-engine/internal/domain"

var levelModules = map[domain.Level][]string{
	domain.LevelBeginner: {
		"Foundations",
		"Core Concepts",
		"Guided Practice",
	},
	domain.LevelIntermediate: {
		"Applied Problem Solving",
		"Intermediate Techniques",
		"Mixed Practice Sets",
	},
	domain.LevelAdvanced: {
		"Advanced Topics",
		"Challenge Problems",
		"Expert Case Studies",
	},
}

var remediationModules = []string{
	"Review Missed Concepts",
	"Practice Similar Questions",
}

// LevelFor maps a percentage to a proficiency level.
func LevelFor(percentage int) domain.Level {
	switch {
	case percentage >= 80:
		return domain.LevelAdvanced
	case percentage >= 60:
		return domain.LevelIntermediate
	}
	return domain.LevelBeginner
}

// Recommend builds the single recommendation attached to a submission. Coding
// results are pending external evaluation and never trigger remediation.
func Recommend(percentage int, domainID string, results []domain.QuestionResult) domain.Recommendation {
	level := LevelFor(percentage)
	modules := append([]string(nil), levelModules[level]...)
	for _, r := range results {
		if !r.IsCorrect && r.Type != domain.QuestionCoding {
			modules = append(modules, remediationModules...)
			break
		}
	}
	return domain.Recommendation{Domain: domainID, Level: level, Modules: modules}
}
