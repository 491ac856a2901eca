package entities

import "time"

// OperatingState is the live open/closed state of a center at an instant
type OperatingState string

const (
	OperatingStateOpen             OperatingState = "OPEN"
	OperatingStateClosedOpensLater OperatingState = "CLOSED_OPENS_LATER"
	OperatingStateClosed           OperatingState = "CLOSED"
)

// OperatingStatus pairs the state with the next opening, when one is known
type OperatingStatus struct {
	State      OperatingState `json:"state"`
	NextOpenAt *time.Time     `json:"nextOpenAt,omitempty"`
}

// ProgramMatch is one program ranked by affinity to an assessment
type ProgramMatch struct {
	Program    Program `json:"program"`
	MatchScore int     `json:"matchScore"`
}

// ScoredCenter is a ranked recommendation. Created per request and never persisted
// other than as part of a RecommendationLog.
type ScoredCenter struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Address         string         `json:"address"`
	PhoneNumber     string         `json:"phoneNumber,omitempty"`
	Location        Location       `json:"location"`
	DistanceKm      float64        `json:"distance"`
	TotalScore      float64        `json:"totalScore"`
	DistanceScore   float64        `json:"distanceScore"`
	OperatingScore  float64        `json:"operatingScore"`
	SpecialtyScore  float64        `json:"specialtyScore"`
	ProgramScore    float64        `json:"programScore"`
	OperatingState  OperatingState `json:"operatingState"`
	NextOpenAt      *time.Time     `json:"nextOpenAt,omitempty"`
	MatchedPrograms []ProgramMatch `json:"matchedPrograms,omitempty"`
	Reasons         []string       `json:"reasons"`
}

// RecommendationFilters are the caller's constraints on a recommendation request
type RecommendationFilters struct {
	MaxDistanceKm float64 `json:"maxDistance"`
	Limit         int     `json:"limit"`
}

// RecommendationResult is the ranked output of one request.
// TotalCount counts every scored center inside the radius before truncation.
type RecommendationResult struct {
	Recommendations []ScoredCenter `json:"recommendations"`
	TotalCount      int            `json:"totalCount"`
	SkippedCount    int            `json:"skippedCount,omitempty"`
	Message         string         `json:"message,omitempty"`
}

// RecommendationLog is the analytics record persisted for a served request
type RecommendationLog struct {
	ID            string            `json:"id" db:"id"`
	UserLatitude  float64           `json:"userLatitude" db:"user_latitude"`
	UserLongitude float64           `json:"userLongitude" db:"user_longitude"`
	MaxDistanceKm float64           `json:"maxDistanceKm" db:"max_distance_km"`
	Limit         int               `json:"limit" db:"result_limit"`
	Assessment    *AssessmentResult `json:"assessment,omitempty" db:"-"`
	TotalCount    int               `json:"totalCount" db:"total_count"`
	Results       []LoggedResult    `json:"results" db:"-"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
}

// LoggedResult is the per-center slice of a RecommendationLog
type LoggedResult struct {
	CenterID   string  `json:"centerId"`
	Rank       int     `json:"rank"`
	TotalScore float64 `json:"totalScore"`
}

// CenterOperatingStatus is the live operating state of one center
type CenterOperatingStatus struct {
	CenterID    string         `json:"centerId"`
	Name        string         `json:"name"`
	State       OperatingState `json:"state"`
	NextOpenAt  *time.Time     `json:"nextOpenAt,omitempty"`
	EvaluatedAt time.Time      `json:"evaluatedAt"`
}
