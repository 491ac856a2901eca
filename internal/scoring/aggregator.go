// Package scoring ranks mental-health centers for a user by distance, operating hours,
// staff specialty and program fit. Everything here is pure computation over snapshots;
// fetching candidates is the caller's job.
package scoring

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

// Component weights of the total score
const (
	WeightDistance  = 0.35
	WeightOperating = 0.25
	WeightSpecialty = 0.20
	WeightProgram   = 0.20
)

const (
	// NoCentersFoundMessage accompanies an empty recommendation set
	NoCentersFoundMessage = "no centers found within the requested distance"

	defaultWorkers     = 4
	maxMatchedPrograms = 3
)

// RankRequest carries everything Rank needs besides the candidates
type RankRequest struct {
	Location entities.Location
	Profile  *entities.UserProfile
	Filters  entities.RecommendationFilters
	Now      time.Time
	// Holidays are closures known for the request window. Entries with a CenterID
	// only apply to that center.
	Holidays []entities.Holiday
}

// Aggregator combines the component scores into a ranked, explained list
type Aggregator struct {
	workers int
	logger  zerolog.Logger
}

// NewAggregator creates an aggregator scoring up to workers centers concurrently
func NewAggregator(workers int, logger zerolog.Logger) *Aggregator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Aggregator{
		workers: workers,
		logger:  logger.With().Str("component", "recommendation_aggregator").Logger(),
	}
}

// Round2 rounds half away from zero to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TotalScore applies the fixed component weights
func TotalScore(distance, operating, specialty, program float64) float64 {
	return Round2(distance*WeightDistance + operating*WeightOperating + specialty*WeightSpecialty + program*WeightProgram)
}

// Rank filters candidates by distance, scores the survivors and returns the top
// Filters.Limit by total score. Equal scores keep candidate order. A center that
// cannot be scored is skipped and counted in SkippedCount.
func (a *Aggregator) Rank(ctx context.Context, req RankRequest, candidates []*entities.Center) (*entities.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Profile == nil {
		return nil, apperrors.NewValidationError("user profile is required")
	}
	if req.Profile.AssessmentResult != nil {
		if err := validateAssessment(req.Profile.AssessmentResult); err != nil {
			return nil, err
		}
	}
	if req.Profile.Age != nil && *req.Profile.Age < 0 {
		return nil, apperrors.NewOutOfRangeError("age must not be negative")
	}
	if err := validateNow(req.Now); err != nil {
		return nil, err
	}
	if req.Filters.Limit <= 0 {
		return nil, apperrors.NewOutOfRangeError("limit must be a positive integer")
	}

	inRange, err := FilterByDistance(req.Location, candidates, req.Filters.MaxDistanceKm)
	if err != nil {
		return nil, err
	}
	if len(inRange) == 0 {
		return &entities.RecommendationResult{
			Recommendations: []entities.ScoredCenter{},
			Message:         NoCentersFoundMessage,
		}, nil
	}

	logger := a.loggerFor(ctx)
	slots := make([]*entities.ScoredCenter, len(inRange))

	workers := a.workers
	if workers > len(inRange) {
		workers = len(inRange)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scored, err := a.scoreCenter(req, inRange[i])
				if err != nil {
					logger.Warn().
						Err(err).
						Str("center_id", inRange[i].Center.ID).
						Msg("Skipping center that could not be scored")
					continue
				}
				slots[i] = scored
			}
		}()
	}
	for i := range inRange {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	ranked := make([]entities.ScoredCenter, 0, len(slots))
	for _, s := range slots {
		if s != nil {
			ranked = append(ranked, *s)
		}
	}
	skipped := len(inRange) - len(ranked)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	result := &entities.RecommendationResult{
		TotalCount:   len(ranked),
		SkippedCount: skipped,
	}
	if len(ranked) > req.Filters.Limit {
		ranked = ranked[:req.Filters.Limit]
	}
	result.Recommendations = ranked
	if len(ranked) == 0 {
		result.Message = NoCentersFoundMessage
	}

	return result, nil
}

func (a *Aggregator) scoreCenter(req RankRequest, dr DistanceResult) (*entities.ScoredCenter, error) {
	center := dr.Center
	now := req.Now

	status, err := EvaluateOperatingState(center.OperatingHours, now, MergeClosures(center, req.Holidays))
	if err != nil {
		return nil, err
	}
	operating := operatingScoreFor(status, now)

	staff := entities.NewStaffInfo(center.StaffTypes)
	specialty, err := CalculateSpecialtyScore(&staff)
	if err != nil {
		return nil, err
	}

	program, err := CalculateProgramScore(center.Programs, req.Profile)
	if err != nil {
		return nil, err
	}

	var matched []entities.ProgramMatch
	if req.Profile.AssessmentResult != nil {
		matched, err = MatchProgramsByAssessment(center.Programs, req.Profile.AssessmentResult)
		if err != nil {
			return nil, err
		}
		if len(matched) > maxMatchedPrograms {
			matched = matched[:maxMatchedPrograms]
		}
	}

	distance := Round2(dr.DistanceScore)
	scored := &entities.ScoredCenter{
		ID:              center.ID,
		Name:            center.Name,
		Address:         center.Address,
		PhoneNumber:     center.PhoneNumber,
		Location:        *center.Location,
		DistanceKm:      Round2(dr.DistanceKm),
		TotalScore:      TotalScore(distance, operating, specialty, program),
		DistanceScore:   distance,
		OperatingScore:  operating,
		SpecialtyScore:  specialty,
		ProgramScore:    program,
		OperatingState:  status.State,
		NextOpenAt:      status.NextOpenAt,
		MatchedPrograms: matched,
	}
	scored.Reasons = buildReasons(scored, staff, req.Profile.AssessmentResult != nil)

	return scored, nil
}

// MergeClosures returns the calendar entries that apply to center plus the center's own closures
func MergeClosures(center *entities.Center, calendar []entities.Holiday) []entities.Holiday {
	if len(calendar) == 0 {
		return center.Holidays
	}

	merged := make([]entities.Holiday, 0, len(calendar)+len(center.Holidays))
	for _, h := range calendar {
		if h.CenterID == "" || h.CenterID == center.ID {
			merged = append(merged, h)
		}
	}
	return append(merged, center.Holidays...)
}

func (a *Aggregator) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.logger
}
