package services

import (
	"context"

	"github.com/zatekoja/mindcare/internal/domain/repositories"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
)

const defaultIndexBatchSize = 100

// ReindexStats summarizes a reindex run
type ReindexStats struct {
	Indexed int
	Failed  int
}

// CenterIndexService pushes active centers into the geo search index
type CenterIndexService struct {
	repo       repositories.CenterRepository
	searchRepo repositories.CenterSearchRepository
}

// NewCenterIndexService creates a new center index service
func NewCenterIndexService(repo repositories.CenterRepository, searchRepo repositories.CenterSearchRepository) *CenterIndexService {
	return &CenterIndexService{
		repo:       repo,
		searchRepo: searchRepo,
	}
}

// Reindex pages through every active center and upserts it into the index.
// A center that fails to index is logged and counted; listing failures abort the run.
func (s *CenterIndexService) Reindex(ctx context.Context, batchSize int) (ReindexStats, error) {
	if batchSize <= 0 {
		batchSize = defaultIndexBatchSize
	}

	logger := observability.LoggerFromContext(ctx)
	active := true
	var stats ReindexStats

	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		centers, err := s.repo.List(ctx, repositories.CenterFilter{
			IsActive: &active,
			Limit:    batchSize,
			Offset:   offset,
		})
		if err != nil {
			return stats, err
		}

		for _, center := range centers {
			if err := s.searchRepo.Index(ctx, center); err != nil {
				logger.Warn().Err(err).Str("center_id", center.ID).Msg("Failed to index center")
				stats.Failed++
				continue
			}
			stats.Indexed++
		}

		if len(centers) < batchSize {
			break
		}
	}

	logger.Info().Int("indexed", stats.Indexed).Int("failed", stats.Failed).Msg("Center reindex finished")
	return stats, nil
}

// Remove deletes a center from the index
func (s *CenterIndexService) Remove(ctx context.Context, id string) error {
	return s.searchRepo.Delete(ctx, id)
}
