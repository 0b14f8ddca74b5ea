package domain

// Destination names a screen.
type Destination string

const (
	DestinationMap   Destination = "map"
	DestinationFacts Destination = "facts"
)

// IsValid reports whether d is a known screen.
func (d Destination) IsValid() bool {
	switch d {
	case DestinationMap, DestinationFacts:
		return true
	}
	return false
}

// NavState is the navigator's visible state.
type NavState struct {
	Current Destination   `json:"current"`
	Stack   []Destination `json:"stack"`
}
