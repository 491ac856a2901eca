package scoring

import (
	"math"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	apperrors "github.com/zatekoja/mindcare/pkg/errors"
)

// DistanceResult is a center that survived the radius filter
type DistanceResult struct {
	Center        *entities.Center
	DistanceKm    float64
	DistanceScore float64
}

// HaversineDistance returns the great-circle distance between two points in kilometers
func HaversineDistance(from, to entities.Location) float64 {
	lat1Rad := from.Latitude * math.Pi / 180
	lat2Rad := to.Latitude * math.Pi / 180
	deltaLat := (to.Latitude - from.Latitude) * math.Pi / 180
	deltaLon := (to.Longitude - from.Longitude) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return entities.EarthRadiusKm * c
}

// DistanceScore maps [0, maxDistanceKm] linearly onto [100, 0].
// Distances past the radius score 0.
func DistanceScore(distanceKm, maxDistanceKm float64) float64 {
	if distanceKm <= 0 {
		return 100
	}
	if distanceKm >= maxDistanceKm {
		return 0
	}
	return 100 * (1 - distanceKm/maxDistanceKm)
}

// FilterByDistance keeps the centers within maxDistanceKm of user, in candidate order.
// Centers without valid coordinates are dropped. An empty result is not an error.
func FilterByDistance(user entities.Location, centers []*entities.Center, maxDistanceKm float64) ([]DistanceResult, error) {
	if math.IsNaN(maxDistanceKm) || math.IsInf(maxDistanceKm, 0) || maxDistanceKm <= 0 {
		return nil, apperrors.NewOutOfRangeError("maxDistance must be a positive number of kilometers")
	}
	if !user.IsValid() {
		return nil, apperrors.NewValidationError("user location must have a valid latitude and longitude")
	}

	results := make([]DistanceResult, 0, len(centers))
	for _, center := range centers {
		if center == nil || !center.Location.IsValid() {
			continue
		}

		d := HaversineDistance(user, *center.Location)
		if d > maxDistanceKm {
			continue
		}

		results = append(results, DistanceResult{
			Center:        center,
			DistanceKm:    d,
			DistanceScore: DistanceScore(d, maxDistanceKm),
		})
	}

	return results, nil
}
