package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
	"github.com/zatekoja/mindcare/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

const recommendationLogsTable = "recommendation_logs"

// RecommendationLogAdapter persists served recommendations in Postgres
type RecommendationLogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.RecommendationLogRepository = (*RecommendationLogAdapter)(nil)

// NewRecommendationLogAdapter creates a new recommendation log adapter
func NewRecommendationLogAdapter(client *postgres.Client) *RecommendationLogAdapter {
	return &RecommendationLogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a recommendation log. Results are stored as jsonb.
func (a *RecommendationLogAdapter) Create(ctx context.Context, log *entities.RecommendationLog) error {
	if log == nil {
		return apperrors.NewInternalError("recommendation log is nil", fmt.Errorf("recommendation log is nil"))
	}

	results, err := json.Marshal(log.Results)
	if err != nil {
		return apperrors.NewInternalError("failed to encode recommendation results", err)
	}

	var severity, category sql.NullString
	if log.Assessment != nil {
		severity = sql.NullString{String: string(log.Assessment.Severity), Valid: true}
		category = sql.NullString{String: log.Assessment.Category, Valid: log.Assessment.Category != ""}
	}

	record := goqu.Record{
		"id":                  log.ID,
		"user_latitude":       log.UserLatitude,
		"user_longitude":      log.UserLongitude,
		"max_distance_km":     log.MaxDistanceKm,
		"result_limit":        log.Limit,
		"assessment_severity": severity,
		"assessment_category": category,
		"total_count":         log.TotalCount,
		"results":             string(results),
		"created_at":          log.CreatedAt,
	}

	query, args, err := a.db.Insert(recommendationLogsTable).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build recommendation log insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create recommendation log", err)
	}

	return nil
}
