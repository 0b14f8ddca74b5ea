package storage

import (
	"github.com/lcalzada-xor/factmap/internal/core/domain"
)

// toDomain converts a database model to a domain entity.
func toDomain(m FetchRunModel) domain.FetchRun {
	return domain.FetchRun{
		ID:         m.ID,
		Trigger:    domain.FetchTrigger(m.Trigger),
		StartedAt:  m.StartedAt.UTC(),
		FinishedAt: m.FinishedAt.UTC(),
		Attempts:   m.Attempts,
		Succeeded:  m.Succeeded,
		Outcome:    domain.RunOutcome(m.Outcome),
		Error:      m.Error,
	}
}

// toModel converts a domain entity to a database model.
func toModel(r domain.FetchRun) FetchRunModel {
	return FetchRunModel{
		ID:         r.ID,
		Trigger:    string(r.Trigger),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Attempts:   r.Attempts,
		Succeeded:  r.Succeeded,
		Outcome:    string(r.Outcome),
		Error:      r.Error,
	}
}
