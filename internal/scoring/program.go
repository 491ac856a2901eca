package scoring

import (
	"sort"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
	"github.com/zatekoja/mindcare/pkg/utils"
)

// Match weights for the explanatory program ranking
const (
	matchCategory             = 10
	matchGeneralCategory      = 3
	matchSeverity             = 5
	matchUnrestrictedSeverity = 1
)

// Program score tiers
const (
	programScoreExact         = 100
	programScoreCategory      = 70
	programScoreGeneral       = 50
	programScoreNoMatch       = 30
	programScoreNoAssessment  = 50
	programScoreNoInformation = 30
)

func validatePrograms(programs []entities.Program) error {
	for _, p := range programs {
		if p.TargetAge != nil && p.TargetAge.Min > p.TargetAge.Max {
			return apperrors.NewValidationErrorf("program %q has targetAge min %d greater than max %d", p.ID, p.TargetAge.Min, p.TargetAge.Max)
		}
		for _, s := range p.TargetSeverity {
			if !s.IsValid() {
				return apperrors.NewValidationErrorf("program %q has unknown target severity %q", p.ID, s)
			}
		}
	}
	return nil
}

func validateAssessment(a *entities.AssessmentResult) error {
	if a == nil {
		return apperrors.NewValidationError("assessment result is required")
	}
	if !a.Severity.IsValid() {
		return apperrors.NewValidationErrorf("assessment severity %q must be one of LOW, MID, HIGH", a.Severity)
	}
	return nil
}

func sameCategory(programCategory, assessmentCategory string) bool {
	want := utils.NormalizeTag(assessmentCategory)
	return want != "" && utils.NormalizeTag(programCategory) == want
}

func targetsSeverity(p entities.Program, severity entities.Severity) bool {
	for _, s := range p.TargetSeverity {
		if s == severity {
			return true
		}
	}
	return false
}

// MatchProgramsByAssessment ranks programs by affinity to the assessment, highest first.
// Programs with no category or severity affinity are left out.
func MatchProgramsByAssessment(programs []entities.Program, assessment *entities.AssessmentResult) ([]entities.ProgramMatch, error) {
	if err := validateAssessment(assessment); err != nil {
		return nil, err
	}
	if err := validatePrograms(programs); err != nil {
		return nil, err
	}

	matches := make([]entities.ProgramMatch, 0, len(programs))
	for _, p := range programs {
		score := 0

		switch {
		case sameCategory(p.Category, assessment.Category):
			score += matchCategory
		case p.IsGeneral():
			score += matchGeneralCategory
		}

		switch {
		case targetsSeverity(p, assessment.Severity):
			score += matchSeverity
		case p.TargetSeverity == nil:
			score += matchUnrestrictedSeverity
		}

		if score == 0 {
			continue
		}
		matches = append(matches, entities.ProgramMatch{Program: p, MatchScore: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	return matches, nil
}

// CalculateProgramScore scores a center's programs against the user's profile.
// Without an assessment it only distinguishes centers with programs (50) from those without (30).
func CalculateProgramScore(programs []entities.Program, profile *entities.UserProfile) (float64, error) {
	if profile == nil {
		return 0, apperrors.NewValidationError("user profile is required")
	}
	if err := validatePrograms(programs); err != nil {
		return 0, err
	}

	assessment := profile.AssessmentResult
	if assessment == nil {
		if len(programs) > 0 {
			return programScoreNoAssessment, nil
		}
		return programScoreNoInformation, nil
	}
	if err := validateAssessment(assessment); err != nil {
		return 0, err
	}

	var categoryMatch, generalMatch bool
	for _, p := range programs {
		if sameCategory(p.Category, assessment.Category) {
			if targetsSeverity(p, assessment.Severity) && ageFits(p, profile.Age) {
				return programScoreExact, nil
			}
			categoryMatch = true
		}
		if p.IsGeneral() {
			generalMatch = true
		}
	}

	switch {
	case categoryMatch:
		return programScoreCategory, nil
	case generalMatch:
		return programScoreGeneral, nil
	default:
		return programScoreNoMatch, nil
	}
}

// ageFits ignores age unless both the user's age and the program's range are known
func ageFits(p entities.Program, age *int) bool {
	if age == nil || p.TargetAge == nil {
		return true
	}
	return p.TargetAge.Contains(*age)
}
