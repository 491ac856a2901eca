package database

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/providers"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
	"github.com/zatekoja/mindcare/internal/infrastructure/observability"
)

// Cache TTLs
const (
	centerByIDTTL = 5 * time.Minute

	// candidateSlackKm covers the shift introduced by rounding the origin to 3 decimals (~80 m worst case)
	candidateSlackKm = 0.2
)

// CachedCenterAdapter wraps a CenterRepository with a read-through cache
type CachedCenterAdapter struct {
	adapter      repositories.CenterRepository
	cache        providers.CacheProvider
	candidateTTL time.Duration
	metrics      *observability.Metrics
}

var _ repositories.CenterRepository = (*CachedCenterAdapter)(nil)

// NewCachedCenterAdapter creates a new cached center adapter
func NewCachedCenterAdapter(adapter repositories.CenterRepository, cache providers.CacheProvider, candidateTTL time.Duration) *CachedCenterAdapter {
	return &CachedCenterAdapter{
		adapter:      adapter,
		cache:        cache,
		candidateTTL: candidateTTL,
	}
}

// SetMetrics enables cache hit/miss counters
func (a *CachedCenterAdapter) SetMetrics(metrics *observability.Metrics) {
	a.metrics = metrics
}

func roundCoordinate(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Cache key generators
func centerCacheKey(id string) string {
	return fmt.Sprintf("center:%s", id)
}

func candidatesCacheKey(origin entities.Location, radiusKm float64) string {
	return fmt.Sprintf("centers:candidates:%.3f:%.3f:%.1f", origin.Latitude, origin.Longitude, radiusKm)
}

// FindCandidates returns cached candidates for the rounded origin. On a miss the
// inner repository is asked for a slightly wider area so that the cached set
// covers every origin that rounds to the same key.
func (a *CachedCenterAdapter) FindCandidates(ctx context.Context, bounds repositories.Bounds) ([]*entities.Center, error) {
	origin := entities.Location{
		Latitude:  roundCoordinate(bounds.Origin.Latitude),
		Longitude: roundCoordinate(bounds.Origin.Longitude),
	}
	cacheKey := candidatesCacheKey(origin, bounds.RadiusKm)

	var centers []*entities.Center
	if a.readCache(ctx, cacheKey, &centers) {
		return centers, nil
	}

	centers, err := a.adapter.FindCandidates(ctx, repositories.BoundsAround(origin, bounds.RadiusKm+candidateSlackKm))
	if err != nil {
		return nil, err
	}

	a.writeCache(ctx, cacheKey, centers, a.candidateTTL)
	return centers, nil
}

// GetByID retrieves a center by ID with caching
func (a *CachedCenterAdapter) GetByID(ctx context.Context, id string) (*entities.Center, error) {
	cacheKey := centerCacheKey(id)

	var center entities.Center
	if a.readCache(ctx, cacheKey, &center) {
		return &center, nil
	}

	fetched, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.writeCache(ctx, cacheKey, fetched, centerByIDTTL)
	return fetched, nil
}

// List is not cached; it only serves the indexer
func (a *CachedCenterAdapter) List(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, error) {
	return a.adapter.List(ctx, filter)
}

// readCache decodes a cached value into dest. Backend and decode failures count as a miss.
func (a *CachedCenterAdapter) readCache(ctx context.Context, key string, dest interface{}) bool {
	logger := observability.LoggerFromContext(ctx)

	cached, found, err := a.cache.Get(ctx, key)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Center cache read failed")
	}
	if err != nil || !found {
		observability.RecordCacheMiss(ctx, a.metrics, "centers")
		return false
	}

	if err := json.Unmarshal(cached, dest); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("Failed to unmarshal cached centers")
		observability.RecordCacheMiss(ctx, a.metrics, "centers")
		return false
	}

	observability.RecordCacheHit(ctx, a.metrics, "centers")
	return true
}

func (a *CachedCenterAdapter) writeCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to cache centers")
	}
}
