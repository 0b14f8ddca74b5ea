package domain

import (
	"time"
)

// RunStats is an aggregated snapshot of recent fetch sequences and the current list.
type RunStats struct {
	// Summary Metrics
	RunCount  int `json:"run_count"`
	FactCount int `json:"fact_count"`

	// Distributions
	OutcomeStats map[RunOutcome]int   `json:"outcome_stats"`
	TriggerStats map[FetchTrigger]int `json:"trigger_stats"`
	SourceStats  map[string]int       `json:"source_stats"` // sources in the visible list

	// Performance
	AverageSuccessRate float64 `json:"success_rate"` // succeeded / attempts, averaged over runs
	AverageDurationMs  float64 `json:"avg_duration_ms"`

	// Metadata
	LastUpdated time.Time `json:"updated_at"`
}

// NewRunStats initializes a new stats object with empty maps to prevent nil access.
func NewRunStats() RunStats {
	return RunStats{
		OutcomeStats: make(map[RunOutcome]int),
		TriggerStats: make(map[FetchTrigger]int),
		SourceStats:  make(map[string]int),
		LastUpdated:  time.Now(),
	}
}

// IsStale returns true if the stats haven't been updated within the given TTL.
func (s *RunStats) IsStale(ttl time.Duration) bool {
	return time.Since(s.LastUpdated) > ttl
}
