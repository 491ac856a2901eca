package repositories

import (
	"context"
	"math"

	"github.com/zatekoja/mindcare/internal/domain/entities"
)

// CenterRepository defines the data-access contract the recommendation pipeline depends on
type CenterRepository interface {
	// FindCandidates returns active centers inside the bounding box, fully hydrated
	// with operating hours, programs, staff types and center closures
	FindCandidates(ctx context.Context, bounds Bounds) ([]*entities.Center, error)

	// GetByID retrieves a single hydrated center
	GetByID(ctx context.Context, id string) (*entities.Center, error)

	// List retrieves centers page by page (used by the indexer)
	List(ctx context.Context, filter CenterFilter) ([]*entities.Center, error)
}

// CenterSearchRepository defines the geo index used to prefilter candidates (e.g. Typesense)
type CenterSearchRepository interface {
	// SearchIDs returns ids of active centers within RadiusKm of the bounds origin
	SearchIDs(ctx context.Context, bounds Bounds, limit int) ([]string, error)

	// Index upserts a center document
	Index(ctx context.Context, center *entities.Center) error

	// Delete removes a center from the index
	Delete(ctx context.Context, id string) error
}

// CenterHydrator loads full center snapshots by id
type CenterHydrator interface {
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Center, error)
}

// CenterFilter defines filters for listing centers
type CenterFilter struct {
	IsActive *bool
	Limit    int
	Offset   int
}

// Bounds is a search area: an origin, a radius and the enclosing lat/lng box
type Bounds struct {
	Origin       entities.Location
	RadiusKm     float64
	MinLatitude  float64
	MaxLatitude  float64
	MinLongitude float64
	MaxLongitude float64
}

// boundsPadding absorbs float rounding at the box edge
const boundsPadding = 1e-9

// BoundsAround returns the box enclosing a circle of radiusKm around origin.
// The box over-approximates the circle; exact filtering happens in the distance scorer.
func BoundsAround(origin entities.Location, radiusKm float64) Bounds {
	angular := radiusKm / entities.EarthRadiusKm
	latDelta := angular*180/math.Pi + boundsPadding

	// widest longitude reached by the spherical cap
	lngDelta := 180.0
	cos := math.Cos(origin.Latitude * math.Pi / 180)
	if sin := math.Sin(angular); angular < math.Pi/2 && sin < cos {
		lngDelta = math.Asin(sin/cos)*180/math.Pi + boundsPadding
	}

	return Bounds{
		Origin:       origin,
		RadiusKm:     radiusKm,
		MinLatitude:  math.Max(-90, origin.Latitude-latDelta),
		MaxLatitude:  math.Min(90, origin.Latitude+latDelta),
		MinLongitude: math.Max(-180, origin.Longitude-lngDelta),
		MaxLongitude: math.Min(180, origin.Longitude+lngDelta),
	}
}
