package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/mindcare/internal/adapters/search"
	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
)

type MockCenterRepository struct {
	mock.Mock
}

func (m *MockCenterRepository) FindCandidates(ctx context.Context, bounds repositories.Bounds) ([]*entities.Center, error) {
	args := m.Called(ctx, bounds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Center), args.Error(1)
}

func (m *MockCenterRepository) GetByID(ctx context.Context, id string) (*entities.Center, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Center), args.Error(1)
}

func (m *MockCenterRepository) List(ctx context.Context, filter repositories.CenterFilter) ([]*entities.Center, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Center), args.Error(1)
}

func (m *MockCenterRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.Center, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Center), args.Error(1)
}

type MockCenterSearchRepository struct {
	mock.Mock
}

func (m *MockCenterSearchRepository) SearchIDs(ctx context.Context, bounds repositories.Bounds, limit int) ([]string, error) {
	args := m.Called(ctx, bounds, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCenterSearchRepository) Index(ctx context.Context, center *entities.Center) error {
	return m.Called(ctx, center).Error(0)
}

func (m *MockCenterSearchRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestGeoPrefilterRepository_FindCandidates(t *testing.T) {
	bounds := repositories.BoundsAround(entities.Location{Latitude: 37.5665, Longitude: 126.978}, 10)
	centers := []*entities.Center{{ID: "c2"}, {ID: "c1"}}

	t.Run("hydrates index hits", func(t *testing.T) {
		primary := new(MockCenterRepository)
		index := new(MockCenterSearchRepository)
		index.On("SearchIDs", mock.Anything, bounds, 100).Return([]string{"c2", "c1"}, nil)
		primary.On("GetByIDs", mock.Anything, []string{"c2", "c1"}).Return(centers, nil)

		got, err := search.NewGeoPrefilterRepository(primary, primary, index, 100).FindCandidates(context.Background(), bounds)

		require.NoError(t, err)
		assert.Equal(t, centers, got)
		primary.AssertNotCalled(t, "FindCandidates", mock.Anything, mock.Anything)
	})

	t.Run("index failure falls back to the bounding box", func(t *testing.T) {
		primary := new(MockCenterRepository)
		index := new(MockCenterSearchRepository)
		index.On("SearchIDs", mock.Anything, bounds, 100).Return(nil, errors.New("typesense unavailable"))
		primary.On("FindCandidates", mock.Anything, bounds).Return(centers, nil)

		got, err := search.NewGeoPrefilterRepository(primary, primary, index, 100).FindCandidates(context.Background(), bounds)

		require.NoError(t, err)
		assert.Equal(t, centers, got)
	})

	t.Run("full page falls back to the bounding box", func(t *testing.T) {
		primary := new(MockCenterRepository)
		index := new(MockCenterSearchRepository)
		index.On("SearchIDs", mock.Anything, bounds, 2).Return([]string{"c2", "c1"}, nil)
		primary.On("FindCandidates", mock.Anything, bounds).Return(centers, nil)

		_, err := search.NewGeoPrefilterRepository(primary, primary, index, 2).FindCandidates(context.Background(), bounds)

		require.NoError(t, err)
		primary.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
		primary.AssertExpectations(t)
	})
}
