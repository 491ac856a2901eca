package database

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/zatekoja/mindcare/internal/domain/entities"
)

// loaderWait bounds how long a loader waits for more keys before firing a partial batch
const loaderWait = 2 * time.Millisecond

// centerLoaders batch the per-center relations of one hydration pass.
// They are built per call, so nothing is cached across requests.
type centerLoaders struct {
	hours    *dataloader.Loader[string, []entities.OperatingHours]
	programs *dataloader.Loader[string, []entities.Program]
	staff    *dataloader.Loader[string, []string]
	closures *dataloader.Loader[string, []entities.Holiday]
}

func newCenterLoaders(a *CenterAdapter, batchSize int) *centerLoaders {
	return &centerLoaders{
		hours: dataloader.NewBatchedLoader(
			batchByCenter(a.loadOperatingHours),
			dataloader.WithBatchCapacity[string, []entities.OperatingHours](batchSize),
			dataloader.WithWait[string, []entities.OperatingHours](loaderWait),
		),
		programs: dataloader.NewBatchedLoader(
			batchByCenter(a.loadPrograms),
			dataloader.WithBatchCapacity[string, []entities.Program](batchSize),
			dataloader.WithWait[string, []entities.Program](loaderWait),
		),
		staff: dataloader.NewBatchedLoader(
			batchByCenter(a.loadStaff),
			dataloader.WithBatchCapacity[string, []string](batchSize),
			dataloader.WithWait[string, []string](loaderWait),
		),
		closures: dataloader.NewBatchedLoader(
			batchByCenter(a.loadClosures),
			dataloader.WithBatchCapacity[string, []entities.Holiday](batchSize),
			dataloader.WithWait[string, []entities.Holiday](loaderWait),
		),
	}
}

// batchByCenter adapts a grouped query into a batch function. Centers without
// rows get an empty, non-nil slice.
func batchByCenter[V any](load func(ctx context.Context, ids []string) (map[string][]V, error)) dataloader.BatchFunc[string, []V] {
	return func(ctx context.Context, keys []string) []*dataloader.Result[[]V] {
		results := make([]*dataloader.Result[[]V], len(keys))
		grouped, err := load(ctx, keys)

		for i, key := range keys {
			if err != nil {
				results[i] = &dataloader.Result[[]V]{Error: err}
				continue
			}
			values := grouped[key]
			if values == nil {
				values = []V{}
			}
			results[i] = &dataloader.Result[[]V]{Data: values}
		}
		return results
	}
}
