package domain

import (
	"errors"
	"time"
)

// UnknownSource is reported when the facts API omits the source field.
const UnknownSource = "Unknown"

// Domain Errors
var (
	ErrUnknownDestination = errors.New("unknown destination")
	ErrInvalidLimit       = errors.New("limit must be between 1 and 500")
)

// Fact is a single record returned by the random facts API.
type Fact struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
}

// FactsStatus is the visible phase of the facts screen.
type FactsStatus string

const (
	FactsLoading FactsStatus = "loading"
	FactsLoaded  FactsStatus = "loaded"
	FactsError   FactsStatus = "error"
)

// FactsState is a snapshot of what the facts screen shows.
// Facts is only meaningful when Status is FactsLoaded, Error only when FactsError.
type FactsState struct {
	Status    FactsStatus `json:"status"`
	Facts     []Fact      `json:"facts"`
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewLoadingState returns the state shown while a fetch sequence is running.
func NewLoadingState() FactsState {
	return FactsState{
		Status:    FactsLoading,
		Facts:     []Fact{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns a copy that does not share the facts slice.
func (s FactsState) Clone() FactsState {
	out := s
	out.Facts = make([]Fact, len(s.Facts))
	copy(out.Facts, s.Facts)
	return out
}
