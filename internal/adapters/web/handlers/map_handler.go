package handlers

import (
	"log"
	"net/http"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"github.com/lcalzada-xor/factmap/internal/geo"
)

// MapHandler handles the map screen endpoints
type MapHandler struct {
	Service ports.MapService
	// Sink is nil when the device location comes from static configuration.
	Sink ports.LocationSink
}

// NewMapHandler creates a new MapHandler
func NewMapHandler(service ports.MapService, sink ports.LocationSink) *MapHandler {
	return &MapHandler{
		Service: service,
		Sink:    sink,
	}
}

type permissionRequest struct {
	Granted *bool `json:"granted"`
}

type locationRequest struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
}

// HandleState returns the current map screen state
func (h *MapHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.State())
}

// HandlePermission records the location permission decision
func (h *MapHandler) HandlePermission(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Granted == nil {
		http.Error(w, "Missing field: granted", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.Service.SetPermission(r.Context(), *req.Granted))
}

// HandleLocate recenters the camera on the last known location
func (h *MapHandler) HandleLocate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Locate(r.Context()))
}

// HandleLoaded marks the map as rendered
func (h *MapHandler) HandleLoaded(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.MarkLoaded())
}

// HandleLocation accepts a device fix from the client and re-locates
func (h *MapHandler) HandleLocation(w http.ResponseWriter, r *http.Request) {
	if h.Sink == nil {
		http.Error(w, "Device location is statically configured", http.StatusConflict)
		return
	}

	var req locationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Latitude == nil || req.Longitude == nil {
		http.Error(w, "Missing field: lat and lng are required", http.StatusBadRequest)
		return
	}
	loc := geo.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	if !domain.IsValidCoordinate(loc.Latitude, loc.Longitude) {
		http.Error(w, "Coordinates out of range", http.StatusBadRequest)
		return
	}

	log.Printf("Device location reported: %.6f,%.6f", loc.Latitude, loc.Longitude)
	h.Sink.Update(loc)
	writeJSON(w, http.StatusOK, h.Service.Locate(r.Context()))
}
