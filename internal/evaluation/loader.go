package evaluation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/pkg/utils"
)

// LoadGoldenSet reads and parses a golden scenario set from a JSON file.
// Fixture centers are canonicalized with normalizer (nil uses the built-in
// aliases), the same way the database adapter canonicalizes stored centers.
func LoadGoldenSet(path string, normalizer *utils.CategoryNormalizer) (*GoldenSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden scenarios file: %w", err)
	}

	var set GoldenSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse golden scenarios: %w", err)
	}

	if normalizer == nil {
		normalizer = utils.DefaultCategoryNormalizer()
	}
	NormalizeCenters(set.Centers, normalizer)

	return &set, nil
}

// NormalizeCenters rewrites program categories and staff types to their canonical tags
func NormalizeCenters(centers []*entities.Center, normalizer *utils.CategoryNormalizer) {
	for _, c := range centers {
		if c == nil {
			continue
		}
		c.StaffTypes = normalizer.StaffTypes(c.StaffTypes)
		for i := range c.Programs {
			c.Programs[i].Category = normalizer.Category(c.Programs[i].Category)
		}
	}
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateGoldenSet checks that every scenario is well formed and only expects fixture centers.
func ValidateGoldenSet(set *GoldenSet) error {
	centers := make(map[string]struct{}, len(set.Centers))
	for i, c := range set.Centers {
		if c == nil || c.ID == "" {
			return fmt.Errorf("center at index %d: missing id", i)
		}
		if _, dup := centers[c.ID]; dup {
			return fmt.Errorf("center at index %d: duplicate id %q", i, c.ID)
		}
		centers[c.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(set.Scenarios))
	for i, s := range set.Scenarios {
		if s.ID == "" {
			return fmt.Errorf("scenario at index %d: missing id", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("scenario at index %d: duplicate id %q", i, s.ID)
		}
		seen[s.ID] = struct{}{}

		if !s.Kind.IsValid() {
			return fmt.Errorf("scenario %q: invalid kind %q", s.ID, s.Kind)
		}
		if !validDifficulties[s.Difficulty] {
			return fmt.Errorf("scenario %q: invalid difficulty %q (must be easy/medium/hard)", s.ID, s.Difficulty)
		}
		if s.Now.IsZero() {
			return fmt.Errorf("scenario %q: missing now", s.ID)
		}
		if !s.Location.IsValid() {
			return fmt.Errorf("scenario %q: invalid location", s.ID)
		}
		if s.MaxDistanceKm <= 0 || s.Limit <= 0 {
			return fmt.Errorf("scenario %q: max_distance_km and limit must be positive", s.ID)
		}
		if s.Assessment != nil && !s.Assessment.Severity.IsValid() {
			return fmt.Errorf("scenario %q: invalid severity %q", s.ID, s.Assessment.Severity)
		}
		for _, id := range s.ExpectedCenterIDs {
			if _, ok := centers[id]; !ok {
				return fmt.Errorf("scenario %q: expects unknown center %q", s.ID, id)
			}
		}
	}

	return nil
}
