package search

import (
	"context"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
)

// GeoPrefilterRepository narrows candidates through the geo index and hydrates
// them from the primary store. Index failures and possibly truncated hit lists
// fall back to the primary store's bounding-box query.
type GeoPrefilterRepository struct {
	primary  repositories.CenterRepository
	hydrator repositories.CenterHydrator
	index    repositories.CenterSearchRepository
	maxHits  int
}

var _ repositories.CenterRepository = (*GeoPrefilterRepository)(nil)

// NewGeoPrefilterRepository creates a prefiltering center repository
func NewGeoPrefilterRepository(
	primary repositories.CenterRepository,
	hydrator repositories.CenterHydrator,
	index repositories.CenterSearchRepository,
	maxHits int,
) *GeoPrefilterRepository {
	if maxHits <= 0 || maxHits > maxPerPage {
		maxHits = maxPerPage
	}
	return &GeoPrefilterRepository{
		primary:  primary,
		hydrator: hydrator,
		index:    index,
		maxHits:  maxHits,
	}
}

// FindCandidates returns hydrated centers the index places within the bounds radius
func (r *GeoPrefilterRepository) FindCandidates(ctx context.Context, bounds repositories.Bounds) ([]*entities.Center, error) {
	ctx, span := observability.StartSpan(ctx, "GeoPrefilterRepository.FindCandidates")
	defer span.End()

	ids, err := r.index.SearchIDs(ctx, bounds, r.maxHits)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Err(err).
			Msg("Geo index search failed, falling back to bounding-box query")
		return r.primary.FindCandidates(ctx, bounds)
	}

	// a full page may be truncated
	if len(ids) >= r.maxHits {
		return r.primary.FindCandidates(ctx, bounds)
	}

	return r.hydrator.GetByIDs(ctx, ids)
}

// GetByID reads through to the primary store
func (r *GeoPrefilterRepository) GetByID(ctx context.Context, id string) (*entities.Center, error) {
	return r.primary.GetByID(ctx, id)
}

// List reads through to the primary store
func (r *GeoPrefilterRepository) List(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, error) {
	return r.primary.List(ctx, filter)
}
