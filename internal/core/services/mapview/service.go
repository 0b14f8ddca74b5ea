package mapview

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"github.com/lcalzada-xor/factmap/internal/geo"
	"github.com/lcalzada-xor/factmap/internal/telemetry"
)

// DefaultLoadGrace is how long the map may take before it is treated as loaded anyway.
const DefaultLoadGrace = 2 * time.Second

// Location lookup results, used as metric labels
const (
	lookupFound  = "found"
	lookupNoFix  = "no_fix"
	lookupError  = "error"
	lookupDenied = "denied"
)

// Service owns the map screen state.
type Service struct {
	provider ports.LocationProvider
	grace    time.Duration

	mu         sync.Mutex
	notifier   ports.StateNotifier
	permission bool
	user       *geo.Location
	camera     domain.Camera
	loaded     bool
	timer      *time.Timer
}

// NewService creates the map screen with the permission as currently known.
func NewService(provider ports.LocationProvider, permission bool, grace time.Duration) *Service {
	if provider == nil {
		provider = geo.NoFixProvider{}
	}
	if grace <= 0 {
		grace = DefaultLoadGrace
	}
	return &Service{
		provider:   provider,
		grace:      grace,
		permission: permission,
		camera: domain.Camera{
			Target: domain.DefaultLocation,
			Zoom:   domain.InitialZoom,
		},
	}
}

// SetNotifier registers the receiver of state changes.
func (s *Service) SetNotifier(n ports.StateNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// Start shows the screen: it arms the load grace timer and centres the camera.
func (s *Service) Start(ctx context.Context) domain.MapState {
	s.mu.Lock()
	if s.timer == nil && !s.loaded {
		s.timer = time.AfterFunc(s.grace, func() { s.MarkLoaded() })
	}
	s.mu.Unlock()
	return s.Locate(ctx)
}

// Close stops the load grace timer.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// State returns a snapshot of the map screen.
func (s *Service) State() domain.MapState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// SetPermission records the result of the permission prompt and re-centres the map.
func (s *Service) SetPermission(ctx context.Context, granted bool) domain.MapState {
	s.mu.Lock()
	s.permission = granted
	s.mu.Unlock()
	log.Printf("map: location permission granted: %t", granted)
	return s.Locate(ctx)
}

// Locate asks for the last known location and centres the camera on it.
// Without permission, without a fix, or on error the camera falls back to
// the default location.
func (s *Service) Locate(ctx context.Context) domain.MapState {
	s.mu.Lock()
	granted := s.permission
	s.mu.Unlock()

	target := domain.DefaultLocation
	var found *geo.Location

	if !granted {
		log.Printf("map: no location permission, using default location")
		telemetry.LocationLookups.WithLabelValues(lookupDenied).Inc()
	} else {
		loc, ok, err := s.provider.LastKnown(ctx)
		switch {
		case err != nil:
			log.Printf("map: error getting location: %v", err)
			telemetry.LocationLookups.WithLabelValues(lookupError).Inc()
		case !ok:
			log.Printf("map: location is null, using default")
			telemetry.LocationLookups.WithLabelValues(lookupNoFix).Inc()
		default:
			target = loc
			found = &loc
			telemetry.LocationLookups.WithLabelValues(lookupFound).Inc()
		}
	}

	s.mu.Lock()
	if found != nil {
		s.user = found
	}
	s.camera = domain.Camera{Target: target, Zoom: domain.LocatedZoom}
	state := s.snapshotLocked()
	notifier := s.notifier
	s.mu.Unlock()

	if notifier != nil {
		notifier.NotifyMap(state)
	}
	return state
}

// MarkLoaded flags the map as rendered.
func (s *Service) MarkLoaded() domain.MapState {
	s.mu.Lock()
	changed := !s.loaded
	s.loaded = true
	state := s.snapshotLocked()
	notifier := s.notifier
	s.mu.Unlock()

	if changed && notifier != nil {
		notifier.NotifyMap(state)
	}
	return state
}

func (s *Service) snapshotLocked() domain.MapState {
	markers := make([]domain.Marker, 0, len(domain.PointsOfInterest)+1)
	markers = append(markers, domain.PointsOfInterest...)

	var user *geo.Location
	if s.user != nil {
		loc := *s.user
		user = &loc
		markers = append(markers, domain.UserMarker(loc))
	}

	return domain.MapState{
		PermissionGranted: s.permission,
		UserLocation:      user,
		Camera:            s.camera,
		Markers:           markers,
		Loaded:            s.loaded,
	}
}

var _ ports.MapService = (*Service)(nil)
