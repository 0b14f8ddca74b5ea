package geo

import (
	"context"
	"errors"
	"sync"
)

// ErrLocationUnavailable is returned when the location source cannot be queried.
var ErrLocationUnavailable = errors.New("location unavailable")

// Location represents a geographic coordinate.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Provider defines the interface for obtaining the last known device location.
// ok is false when the source has no fix yet.
type Provider interface {
	LastKnown(ctx context.Context) (loc Location, ok bool, err error)
}

// StaticProvider implements Provider with a fixed location.
type StaticProvider struct {
	Lat float64
	Lng float64
}

// NewStaticProvider creates a provider that always returns the same location.
func NewStaticProvider(lat, lng float64) *StaticProvider {
	return &StaticProvider{
		Lat: lat,
		Lng: lng,
	}
}

// LastKnown returns the fixed location.
func (s *StaticProvider) LastKnown(ctx context.Context) (Location, bool, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, false, err
	}
	return Location{
		Latitude:  s.Lat,
		Longitude: s.Lng,
	}, true, nil
}

// NoFixProvider never has a location, like a device that has not located itself yet.
type NoFixProvider struct{}

// LastKnown always reports no value.
func (NoFixProvider) LastKnown(ctx context.Context) (Location, bool, error) {
	return Location{}, false, ctx.Err()
}

// CachedProvider holds the most recent location pushed by a client.
// It starts without a fix.
type CachedProvider struct {
	mu  sync.RWMutex
	loc *Location
}

// NewCachedProvider creates an empty CachedProvider.
func NewCachedProvider() *CachedProvider {
	return &CachedProvider{}
}

// Update replaces the cached location.
func (c *CachedProvider) Update(loc Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loc = &loc
}

// LastKnown returns the cached location, if any.
func (c *CachedProvider) LastKnown(ctx context.Context) (Location, bool, error) {
	if err := ctx.Err(); err != nil {
		return Location{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.loc == nil {
		return Location{}, false, nil
	}
	return *c.loc, true, nil
}
