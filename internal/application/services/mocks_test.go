package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/mindcare/internal/domain/entities"
	"github.com/zatekoja/mindcare/internal/domain/repositories"
)

// Mocks

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
	args := m.Called(ctx, center)
	return args.Error(0)
}

func (m *MockCenterSearchRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockHolidayRepository struct {
	mock.Mock
}

func (m *MockHolidayRepository) ListBetween(ctx context.Context, from, to string) ([]entities.Holiday, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Holiday), args.Error(1)
}

type MockRecommendationLogRepository struct {
	mock.Mock
}

func (m *MockRecommendationLogRepository) Create(ctx context.Context, log *entities.RecommendationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
