package evaluation

import (
	"time"

	"github.com/zatekoja/mindcare/internal/domain/entities"
)

// ScenarioKind is the ranking factor a golden scenario is designed to exercise.
type ScenarioKind string

const (
	KindDistance  ScenarioKind = "distance"  // nearest center should win
	KindHours     ScenarioKind = "hours"     // open-now beats closed
	KindSpecialty ScenarioKind = "specialty" // staff composition decides
	KindProgram   ScenarioKind = "program"   // assessment-matched program decides
	KindMixed     ScenarioKind = "mixed"
)

// IsValid checks if the kind value is one of the defined constants.
func (k ScenarioKind) IsValid() bool {
	switch k {
	case KindDistance, KindHours, KindSpecialty, KindProgram, KindMixed:
		return true
	}
	return false
}

// GoldenSet is a fixture of centers plus the scenarios ranked against it.
type GoldenSet struct {
	Centers   []*entities.Center `json:"centers"`
	Scenarios []GoldenScenario   `json:"scenarios"`
}

// GoldenScenario is one labeled recommendation request with its expected top centers.
// ExpectedCenterIDs is ordered best first.
type GoldenScenario struct {
	ID                string                     `json:"id"`
	Description       string                     `json:"description"`
	Kind              ScenarioKind               `json:"kind"`
	Now               time.Time                  `json:"now"`
	Location          entities.Location          `json:"location"`
	Assessment        *entities.AssessmentResult `json:"assessment,omitempty"`
	Age               *int                       `json:"age,omitempty"`
	MaxDistanceKm     float64                    `json:"max_distance_km"`
	Limit             int                        `json:"limit"`
	Holidays          []entities.Holiday         `json:"holidays,omitempty"`
	ExpectedCenterIDs []string                   `json:"expected_center_ids"`
	Difficulty        string                     `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single scenario.
type EvalResult struct {
	ScenarioID   string        `json:"scenario_id"`
	Kind         ScenarioKind  `json:"kind"`
	RecallAtK    float64       `json:"recall_at_k"`
	MRRAtK       float64       `json:"mrr_at_k"`
	TopHit       bool          `json:"top_hit"`
	ResultCount  int           `json:"result_count"`
	RetrievedIDs []string      `json:"retrieved_ids"`
	Latency      time.Duration `json:"latency_ns"`
	Error        string        `json:"error,omitempty"`
}

// EvalSummary holds aggregate metrics across all golden scenarios.
type EvalSummary struct {
	K                 int                           `json:"k"`
	TotalScenarios    int                           `json:"total_scenarios"`
	Failed            int                           `json:"failed"`
	ScenariosWithHits int                           `json:"scenarios_with_hits"`
	AvgRecallAtK      float64                       `json:"avg_recall_at_k"`
	AvgMRRAtK         float64                       `json:"avg_mrr_at_k"`
	TopHitRate        float64                       `json:"top_hit_rate"`
	AvgLatency        time.Duration                 `json:"avg_latency_ns"`
	ByKind            map[ScenarioKind]*KindSummary `json:"by_kind"`
	Results           []EvalResult                  `json:"results"`
}

// KindSummary holds metrics grouped by scenario kind.
type KindSummary struct {
	Count        int     `json:"count"`
	AvgRecallAtK float64 `json:"avg_recall_at_k"`
	AvgMRRAtK    float64 `json:"avg_mrr_at_k"`
}
