package entities

import (
	"fmt"
	"strings"
)

// Severity is the self-assessment tier
type Severity string

const (
	SeverityLow  Severity = "LOW"
	SeverityMid  Severity = "MID"
	SeverityHigh Severity = "HIGH"
)

// IsValid checks if the severity is one of the defined constants
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMid, SeverityHigh:
		return true
	}
	return false
}

// ParseSeverity accepts any casing and surrounding whitespace
func ParseSeverity(raw string) (Severity, error) {
	s := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid severity %q (must be LOW, MID or HIGH)", raw)
	}
	return s, nil
}

// AssessmentResult is the outcome of a user's self-assessment
type AssessmentResult struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
}

// UserProfile is the per-request description of the person asking for recommendations
type UserProfile struct {
	Location         Location          `json:"location"`
	AssessmentResult *AssessmentResult `json:"assessmentResult,omitempty"`
	Age              *int              `json:"age,omitempty"`
}
