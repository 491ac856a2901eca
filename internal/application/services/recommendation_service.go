package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/providers"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
	"github.com/zatekoja/mindcare/internal/scoring"
	"github.com/zatekoja/mindcare/pkg/config"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

const holidayDateLayout = "2006-01-02"

// RecommendationRequest is the request-layer view of a recommendation call.
// Nil Limit or MaxDistanceKm fall back to the configured defaults.
type RecommendationRequest struct {
	Location      entities.Location
	Assessment    *entities.AssessmentResult
	Age           *int
	MaxDistanceKm *float64
	Limit         *int
}

// RecommendationService applies request defaults, fetches candidates and delegates ranking
type RecommendationService struct {
	centers    repositories.CenterRepository
	aggregator *scoring.Aggregator
	clock      providers.Clock
	cfg        config.RecommendationConfig
	location   *time.Location

	holidays repositories.HolidayRepository
	logs     repositories.RecommendationLogRepository
	metrics  *observability.Metrics
}

// NewRecommendationService creates a new recommendation service.
// It fails when the configured time zone cannot be loaded.
func NewRecommendationService(
	centers repositories.CenterRepository,
	aggregator *scoring.Aggregator,
	clock providers.Clock,
	cfg config.RecommendationConfig,
) (*RecommendationService, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendation timezone %q: %w", cfg.Timezone, err)
	}

	return &RecommendationService{
		centers:    centers,
		aggregator: aggregator,
		clock:      clock,
		cfg:        cfg,
		location:   loc,
	}, nil
}

// SetHolidayRepository enables the calendar-wide holiday lookup
func (s *RecommendationService) SetHolidayRepository(repo repositories.HolidayRepository) {
	s.holidays = repo
}

// SetLogRepository enables best-effort persistence of served recommendations
func (s *RecommendationService) SetLogRepository(repo repositories.RecommendationLogRepository) {
	s.logs = repo
}

// SetMetrics enables recommendation metrics
func (s *RecommendationService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Recommend ranks nearby centers for the request
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendationRequest) (*entities.RecommendationResult, error) {
	ctx, span := observability.StartSpan(ctx, "RecommendationService.Recommend")
	defer span.End()

	start := time.Now()
	logger := observability.LoggerFromContext(ctx)

	if !req.Location.IsValid() {
		return nil, apperrors.NewValidationError("location must have a latitude between -90 and 90 and a longitude between -180 and 180")
	}

	limit, err := s.resolveLimit(req.Limit)
	if err != nil {
		return nil, err
	}
	maxDistance, err := s.resolveMaxDistance(req.MaxDistanceKm)
	if err != nil {
		return nil, err
	}

	bounds := repositories.BoundsAround(req.Location, maxDistance)
	lookupStart := time.Now()
	candidates, err := s.centers.FindCandidates(ctx, bounds)
	observability.RecordDBMetric(ctx, s.metrics, "find_candidates", time.Since(lookupStart))
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	now := s.now()
	holidays := s.loadHolidays(ctx, now)

	rankReq := scoring.RankRequest{
		Location: req.Location,
		Profile: &entities.UserProfile{
			Location:         req.Location,
			AssessmentResult: req.Assessment,
			Age:              req.Age,
		},
		Filters: entities.RecommendationFilters{
			MaxDistanceKm: maxDistance,
			Limit:         limit,
		},
		Now:      now,
		Holidays: holidays,
	}

	result, err := s.aggregator.Rank(logger.WithContext(ctx), rankReq, candidates)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.Int("recommendation.candidates", len(candidates)),
		attribute.Int("recommendation.total", result.TotalCount),
		attribute.Int("recommendation.skipped", result.SkippedCount),
		attribute.Int("recommendation.limit", limit),
		attribute.Float64("recommendation.max_distance_km", maxDistance),
	)
	observability.RecordRecommendationMetric(ctx, s.metrics, result.TotalCount, result.SkippedCount, req.Assessment != nil, time.Since(start))

	s.logRecommendation(ctx, rankReq, result)

	logger.Debug().
		Int("candidates", len(candidates)).
		Int("total", result.TotalCount).
		Int("returned", len(result.Recommendations)).
		Dur("duration", time.Since(start)).
		Msg("Recommendations ranked")

	return result, nil
}

// OperatingStatus evaluates whether a center is open right now and when it opens next
func (s *RecommendationService) OperatingStatus(ctx context.Context, centerID string) (*entities.CenterOperatingStatus, error) {
	ctx, span := observability.StartSpan(ctx, "RecommendationService.OperatingStatus")
	defer span.End()

	if centerID == "" {
		return nil, apperrors.NewValidationError("center id is required")
	}

	center, err := s.centers.GetByID(ctx, centerID)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	now := s.now()
	closures := scoring.MergeClosures(center, s.loadHolidays(ctx, now))

	status, err := scoring.EvaluateOperatingState(center.OperatingHours, now, closures)
	if err != nil {
		observability.RecordError(span, err)
		return nil, apperrors.NewInternalError(fmt.Sprintf("center %s has malformed operating data", centerID), err)
	}

	return &entities.CenterOperatingStatus{
		CenterID:    center.ID,
		Name:        center.Name,
		State:       status.State,
		NextOpenAt:  status.NextOpenAt,
		EvaluatedAt: now,
	}, nil
}

func (s *RecommendationService) now() time.Time {
	return s.clock.Now().In(s.location)
}

func (s *RecommendationService) resolveLimit(limit *int) (int, error) {
	if limit == nil {
		return s.cfg.DefaultLimit, nil
	}
	if *limit <= 0 {
		return 0, apperrors.NewOutOfRangeError("limit must be a positive integer")
	}
	if *limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit, nil
	}
	return *limit, nil
}

func (s *RecommendationService) resolveMaxDistance(maxDistance *float64) (float64, error) {
	if maxDistance == nil {
		return s.cfg.DefaultMaxDistanceKm, nil
	}
	if !(*maxDistance > 0) {
		return 0, apperrors.NewOutOfRangeError("maxDistance must be a positive number of kilometers")
	}
	if *maxDistance > s.cfg.MaxDistanceCapKm {
		return s.cfg.MaxDistanceCapKm, nil
	}
	return *maxDistance, nil
}

// loadHolidays returns the calendar for the next-open window. A failing lookup
// degrades to weekly hours only.
func (s *RecommendationService) loadHolidays(ctx context.Context, now time.Time) []entities.Holiday {
	if s.holidays == nil || !s.cfg.HolidaysEnabled {
		return nil
	}

	from := now.Format(holidayDateLayout)
	to := now.AddDate(0, 0, scoring.DefaultMaxDaysAhead).Format(holidayDateLayout)

	holidays, err := s.holidays.ListBetween(ctx, from, to)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("from", from).
			Str("to", to).
			Msg("Failed to load holidays, scoring on weekly hours only")
		return nil
	}
	return holidays
}

func (s *RecommendationService) logRecommendation(ctx context.Context, req scoring.RankRequest, result *entities.RecommendationResult) {
	if s.logs == nil || !s.cfg.LogRecommendations {
		return
	}

	entry := &entities.RecommendationLog{
		ID:            uuid.New().String(),
		UserLatitude:  req.Location.Latitude,
		UserLongitude: req.Location.Longitude,
		MaxDistanceKm: req.Filters.MaxDistanceKm,
		Limit:         req.Filters.Limit,
		Assessment:    req.Profile.AssessmentResult,
		TotalCount:    result.TotalCount,
		Results:       make([]entities.LoggedResult, 0, len(result.Recommendations)),
		CreatedAt:     req.Now.UTC(),
	}
	for i, r := range result.Recommendations {
		entry.Results = append(entry.Results, entities.LoggedResult{
			CenterID:   r.ID,
			Rank:       i + 1,
			TotalScore: r.TotalScore,
		})
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Str("log_id", entry.ID).
			Msg("Failed to persist recommendation log")
	}
}
