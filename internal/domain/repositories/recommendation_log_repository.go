package repositories

import (
	"context"

	"github.com/zatekoja/mindcare/internal/domain/entities"
)

// RecommendationLogRepository persists served recommendations for analytics
type RecommendationLogRepository interface {
	Create(ctx context.Context, log *entities.RecommendationLog) error
}
