package web

import (
	"context"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/geo"
	"github.com/stretchr/testify/mock"
)

// MockFactsService is a mock of ports.FactsService
type MockFactsService struct {
	mock.Mock
}

func (m *MockFactsService) State() domain.FactsState {
	args := m.Called()
	return args.Get(0).(domain.FactsState)
}

func (m *MockFactsService) Open(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockFactsService) Refresh(ctx context.Context) domain.FactsState {
	args := m.Called(ctx)
	return args.Get(0).(domain.FactsState)
}

func (m *MockFactsService) Close() {
	m.Called()
}

// MockMapService is a mock of ports.MapService
type MockMapService struct {
	mock.Mock
}

func (m *MockMapService) State() domain.MapState {
	args := m.Called()
	return args.Get(0).(domain.MapState)
}

func (m *MockMapService) SetPermission(ctx context.Context, granted bool) domain.MapState {
	args := m.Called(ctx, granted)
	return args.Get(0).(domain.MapState)
}

func (m *MockMapService) Locate(ctx context.Context) domain.MapState {
	args := m.Called(ctx)
	return args.Get(0).(domain.MapState)
}

func (m *MockMapService) MarkLoaded() domain.MapState {
	args := m.Called()
	return args.Get(0).(domain.MapState)
}

// MockNavigator is a mock of ports.Navigator
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) State() domain.NavState {
	args := m.Called()
	return args.Get(0).(domain.NavState)
}

func (m *MockNavigator) Navigate(ctx context.Context, dest domain.Destination) (domain.NavState, error) {
	args := m.Called(ctx, dest)
	return args.Get(0).(domain.NavState), args.Error(1)
}

func (m *MockNavigator) Back(ctx context.Context) domain.NavState {
	args := m.Called(ctx)
	return args.Get(0).(domain.NavState)
}

// MockRunRepository is a mock of ports.RunRepository
type MockRunRepository struct {
	mock.Mock
}

func (m *MockRunRepository) SaveRunsBatch(ctx context.Context, runs []domain.FetchRun) error {
	args := m.Called(ctx, runs)
	return args.Error(0)
}

func (m *MockRunRepository) ListRuns(ctx context.Context, limit int) ([]domain.FetchRun, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FetchRun), args.Error(1)
}

// MockPersistenceToggle is a mock of ports.PersistenceToggle
type MockPersistenceToggle struct {
	mock.Mock
}

func (m *MockPersistenceToggle) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPersistenceToggle) SetEnabled(enabled bool) {
	m.Called(enabled)
}

// MockLocationSink is a mock of ports.LocationSink
type MockLocationSink struct {
	mock.Mock
}

func (m *MockLocationSink) Update(loc geo.Location) {
	m.Called(loc)
}

// MockStatsProvider is a mock of ports.StatsProvider
type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) GetStats(ctx context.Context) (domain.RunStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RunStats), args.Error(1)
}
