package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
)

// Window is the number of most recent runs the statistics cover.
const Window = 500

// StatsService calculates and caches fetch statistics.
type StatsService struct {
	runs  ports.RunRepository
	facts ports.FactsService
	ttl   time.Duration

	cached *domain.RunStats
	mu     sync.Mutex
}

// NewStatsService creates a new statistics service. A ttl of zero disables caching.
func NewStatsService(runs ports.RunRepository, facts ports.FactsService, ttl time.Duration) *StatsService {
	return &StatsService{
		runs:  runs,
		facts: facts,
		ttl:   ttl,
	}
}

// GetStats returns aggregate metrics over the recent run log and the visible list.
func (s *StatsService) GetStats(ctx context.Context) (domain.RunStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil && !s.cached.IsStale(s.ttl) {
		return *s.cached, nil
	}

	runs, err := s.runs.ListRuns(ctx, Window)
	if err != nil {
		return domain.RunStats{}, fmt.Errorf("list runs: %w", err)
	}

	stats := Aggregate(runs, s.facts.State())
	s.cached = &stats
	return stats, nil
}

// Aggregate computes statistics from a set of runs and a facts state.
func Aggregate(runs []domain.FetchRun, state domain.FactsState) domain.RunStats {
	stats := domain.NewRunStats()
	stats.RunCount = len(runs)

	var totalRate, totalMs float64
	var attemptedRuns int

	for _, r := range runs {
		stats.OutcomeStats[r.Outcome]++
		stats.TriggerStats[r.Trigger]++
		totalMs += float64(r.Duration().Milliseconds())

		if r.Attempts > 0 {
			totalRate += float64(r.Succeeded) / float64(r.Attempts)
			attemptedRuns++
		}
	}

	if attemptedRuns > 0 {
		stats.AverageSuccessRate = totalRate / float64(attemptedRuns)
	}
	if len(runs) > 0 {
		stats.AverageDurationMs = totalMs / float64(len(runs))
	}

	if state.Status == domain.FactsLoaded {
		stats.FactCount = len(state.Facts)
		for _, f := range state.Facts {
			stats.SourceStats[f.Source]++
		}
	}

	return stats
}
