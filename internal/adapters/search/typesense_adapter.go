package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
	tsclient "github.com/zatekoja/mindcare/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/mindcare/pkg/utils"
)

// maxPerPage is the Typesense per_page ceiling
const maxPerPage = 250

// TypesenseAdapter implements center geo search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements CenterSearchRepository
var _ repositories.CenterSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a center document
func (a *TypesenseAdapter) Index(ctx context.Context, center *entities.Center) error {
	document, err := buildCenterDocument(center)
	if err != nil {
		return err
	}

	if _, err := a.client.Client().Collection(tsclient.CentersCollection).Documents().Upsert(ctx, document); err != nil {
		return fmt.Errorf("failed to index center: %w", err)
	}
	return nil
}

// Delete removes a center from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	if _, err := a.client.Client().Collection(tsclient.CentersCollection).Document(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete center from index: %w", err)
	}
	return nil
}

// SearchIDs returns ids of active centers within the bounds radius, nearest first
func (a *TypesenseAdapter) SearchIDs(ctx context.Context, bounds repositories.Bounds, limit int) ([]string, error) {
	if limit <= 0 || limit > maxPerPage {
		limit = maxPerPage
	}

	origin := fmt.Sprintf("%f, %f", bounds.Origin.Latitude, bounds.Origin.Longitude)
	searchParams := &api.SearchCollectionParams{
		Q:             pointer.String("*"),
		QueryBy:       pointer.String("name"),
		FilterBy:      pointer.String(fmt.Sprintf("is_active:=true && location:(%s, %f km)", origin, bounds.RadiusKm)),
		SortBy:        pointer.String(fmt.Sprintf("location(%s):asc", origin)),
		IncludeFields: pointer.String("id"),
		PerPage:       pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(tsclient.CentersCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search centers: %w", err)
	}

	ids := []string{}
	if result.Hits == nil {
		return ids, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func buildCenterDocument(center *entities.Center) (map[string]interface{}, error) {
	if center == nil || !center.Location.IsValid() {
		id := ""
		if center != nil {
			id = center.ID
		}
		return nil, fmt.Errorf("center %q has no valid location", id)
	}

	return map[string]interface{}{
		"id":          center.ID,
		"name":        center.Name,
		"location":    []float64{center.Location.Latitude, center.Location.Longitude},
		"is_active":   center.IsActive,
		"staff_types": uniqueSorted(center.StaffTypes),
		"categories":  programCategories(center.Programs),
		"updated_at":  center.UpdatedAt.Unix(),
	}, nil
}

func programCategories(programs []entities.Program) []string {
	raw := make([]string, 0, len(programs))
	for _, p := range programs {
		raw = append(raw, p.Category)
	}
	return uniqueSorted(raw)
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		tag := utils.NormalizeTag(v)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
