package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/mindcare/internal/application/services"
	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
)

func pageAt(offset int) interface{} {
	return mock.MatchedBy(func(f repositories.CenterFilter) bool {
		return f.Offset == offset && f.Limit == 2 && f.IsActive != nil && *f.IsActive
	})
}

func TestCenterIndexService_Reindex(t *testing.T) {
	t.Run("pages until a short page", func(t *testing.T) {
		repo := new(MockCenterRepository)
		search := new(MockCenterSearchRepository)

		repo.On("List", mock.Anything, pageAt(0)).Return([]*entities.Center{{ID: "a"}, {ID: "b"}}, nil)
		repo.On("List", mock.Anything, pageAt(2)).Return([]*entities.Center{{ID: "c"}}, nil)
		search.On("Index", mock.Anything, mock.Anything).Return(nil)

		stats, err := services.NewCenterIndexService(repo, search).Reindex(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, services.ReindexStats{Indexed: 3}, stats)
		search.AssertNumberOfCalls(t, "Index", 3)
		repo.AssertExpectations(t)
	})

	t.Run("counts failed documents and keeps going", func(t *testing.T) {
		repo := new(MockCenterRepository)
		search := new(MockCenterSearchRepository)

		repo.On("List", mock.Anything, pageAt(0)).Return([]*entities.Center{{ID: "a"}, {ID: "b"}}, nil)
		repo.On("List", mock.Anything, pageAt(2)).Return([]*entities.Center{}, nil)
		search.On("Index", mock.Anything, mock.MatchedBy(func(c *entities.Center) bool { return c.ID == "a" })).Return(errors.New("bad document"))
		search.On("Index", mock.Anything, mock.MatchedBy(func(c *entities.Center) bool { return c.ID == "b" })).Return(nil)

		stats, err := services.NewCenterIndexService(repo, search).Reindex(context.Background(), 2)

		require.NoError(t, err)
		assert.Equal(t, services.ReindexStats{Indexed: 1, Failed: 1}, stats)
	})

	t.Run("listing failure aborts", func(t *testing.T) {
		repo := new(MockCenterRepository)
		search := new(MockCenterSearchRepository)
		repo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := services.NewCenterIndexService(repo, search).Reindex(context.Background(), 2)

		assert.Error(t, err)
		search.AssertNotCalled(t, "Index", mock.Anything, mock.Anything)
	})
}

func TestCenterIndexService_Remove(t *testing.T) {
	search := new(MockCenterSearchRepository)
	search.On("Delete", mock.Anything, "a").Return(nil)

	err := services.NewCenterIndexService(new(MockCenterRepository), search).Remove(context.Background(), "a")

	require.NoError(t, err)
	search.AssertExpectations(t)
}
