package domain

import "time"

// FetchTrigger identifies what started a fetch sequence.
type FetchTrigger string

const (
	TriggerInitial FetchTrigger = "initial"
	TriggerRefresh FetchTrigger = "refresh"
)

// RunOutcome is how a fetch sequence ended.
type RunOutcome string

const (
	OutcomeLoaded     RunOutcome = "loaded"
	OutcomeError      RunOutcome = "error"
	OutcomeSuperseded RunOutcome = "superseded" // a newer refresh replaced it
)

// FetchRun is the operational record of one fetch sequence.
// It never carries the facts themselves.
type FetchRun struct {
	ID         string       `json:"id"`
	Trigger    FetchTrigger `json:"trigger"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Attempts   int          `json:"attempts"`
	Succeeded  int          `json:"succeeded"`
	Outcome    RunOutcome   `json:"outcome"`
	Error      string       `json:"error,omitempty"`
}

// Duration returns how long the sequence took.
func (r FetchRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
