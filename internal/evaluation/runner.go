package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/scoring"
)

// DefaultK is the cutoff used for Recall@K and MRR@K
const DefaultK = 3

// Ranker ranks fixture centers for a scenario
type Ranker interface {
	Rank(ctx context.Context, req scoring.RankRequest, candidates []*entities.Center) (*entities.RecommendationResult, error)
}

// Runner runs evaluation across a set of golden scenarios.
type Runner struct {
	ranker Ranker
	k      int
}

func NewRunner(ranker Ranker, k int) *Runner {
	if k <= 0 {
		k = DefaultK
	}
	return &Runner{ranker: ranker, k: k}
}

// Run ranks every scenario against the fixture. Scenario errors are recorded, not returned.
func (r *Runner) Run(ctx context.Context, set *GoldenSet) (*EvalSummary, error) {
	if err := ValidateGoldenSet(set); err != nil {
		return nil, err
	}

	summary := &EvalSummary{
		K:              r.k,
		TotalScenarios: len(set.Scenarios),
		ByKind:         make(map[ScenarioKind]*KindSummary),
		Results:        make([]EvalResult, 0, len(set.Scenarios)),
	}

	for _, gs := range set.Scenarios {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary.Results = append(summary.Results, r.runScenario(ctx, set.Centers, gs))
	}

	for _, res := range summary.Results {
		r.updateSummary(summary, res)
	}
	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) runScenario(ctx context.Context, centers []*entities.Center, gs GoldenScenario) EvalResult {
	req := scoring.RankRequest{
		Location: gs.Location,
		Profile: &entities.UserProfile{
			Location:         gs.Location,
			AssessmentResult: gs.Assessment,
			Age:              gs.Age,
		},
		Filters: entities.RecommendationFilters{
			MaxDistanceKm: gs.MaxDistanceKm,
			Limit:         gs.Limit,
		},
		Now:      gs.Now,
		Holidays: gs.Holidays,
	}

	start := time.Now()
	result, err := r.ranker.Rank(ctx, req, centers)
	res := EvalResult{
		ScenarioID: gs.ID,
		Kind:       gs.Kind,
		Latency:    time.Since(start),
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	ids := make([]string, len(result.Recommendations))
	for i, rec := range result.Recommendations {
		ids[i] = rec.ID
	}

	res.RetrievedIDs = ids
	res.ResultCount = result.TotalCount
	res.RecallAtK = RecallAtK(gs.ExpectedCenterIDs, ids, r.k)
	res.MRRAtK = MRRAtK(gs.ExpectedCenterIDs, ids, r.k)
	res.TopHit = TopHit(gs.ExpectedCenterIDs, ids)
	return res
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	if res.Error != "" {
		s.Failed++
	}
	s.AvgRecallAtK += res.RecallAtK
	s.AvgMRRAtK += res.MRRAtK
	s.AvgLatency += res.Latency
	if res.TopHit {
		s.TopHitRate++
	}
	if res.ResultCount > 0 {
		s.ScenariosWithHits++
	}

	if _, ok := s.ByKind[res.Kind]; !ok {
		s.ByKind[res.Kind] = &KindSummary{}
	}
	ks := s.ByKind[res.Kind]
	ks.Count++
	ks.AvgRecallAtK += res.RecallAtK
	ks.AvgMRRAtK += res.MRRAtK
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	if s.TotalScenarios > 0 {
		n := float64(s.TotalScenarios)
		s.AvgRecallAtK /= n
		s.AvgMRRAtK /= n
		s.TopHitRate /= n
		s.AvgLatency /= time.Duration(s.TotalScenarios)
	}

	for _, ks := range s.ByKind {
		if ks.Count > 0 {
			n := float64(ks.Count)
			ks.AvgRecallAtK /= n
			ks.AvgMRRAtK /= n
		}
	}
}
