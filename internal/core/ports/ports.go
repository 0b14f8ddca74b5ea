package ports

import (
	"context"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/geo"
)

// FactSource fetches one random fact.
// ok is false for any failure; callers never see an error.
type FactSource interface {
	RandomFact(ctx context.Context) (fact domain.Fact, ok bool)
}

// LocationProvider is the device location source consumed by the map screen.
type LocationProvider = geo.Provider

// RunRepository stores fetch sequence records.
type RunRepository interface {
	SaveRunsBatch(ctx context.Context, runs []domain.FetchRun) error
	ListRuns(ctx context.Context, limit int) ([]domain.FetchRun, error)
}

// RunRecorder receives a record for every finished fetch sequence.
type RunRecorder interface {
	Record(run domain.FetchRun)
}

// StateNotifier is told about every visible state change.
type StateNotifier interface {
	NotifyFacts(state domain.FactsState)
	NotifyMap(state domain.MapState)
	NotifyNav(state domain.NavState)
}

// FactsService is the facts screen.
type FactsService interface {
	State() domain.FactsState
	Open(ctx context.Context) bool
	Refresh(ctx context.Context) domain.FactsState
	Close()
}

// MapService is the map screen.
type MapService interface {
	State() domain.MapState
	SetPermission(ctx context.Context, granted bool) domain.MapState
	Locate(ctx context.Context) domain.MapState
	MarkLoaded() domain.MapState
}

// Navigator switches between screens.
type Navigator interface {
	State() domain.NavState
	Navigate(ctx context.Context, dest domain.Destination) (domain.NavState, error)
	Back(ctx context.Context) domain.NavState
}

// PersistenceToggle switches the fetch run log on and off at runtime.
type PersistenceToggle interface {
	IsEnabled() bool
	SetEnabled(enabled bool)
}

// LocationSink accepts device fixes reported by a client.
type LocationSink interface {
	Update(loc geo.Location)
}

// StatsProvider aggregates the run log.
type StatsProvider interface {
	GetStats(ctx context.Context) (domain.RunStats, error)
}
