package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/factmap/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	// Navigation. "back" is registered first so it is not taken for a destination.
	api.HandleFunc("/nav", s.NavHandler.HandleState).Methods(http.MethodGet)
	api.HandleFunc("/nav/back", s.NavHandler.HandleBack).Methods(http.MethodPost)
	api.HandleFunc("/nav/{destination}", s.NavHandler.HandleNavigate).Methods(http.MethodPost)

	// Facts screen
	api.HandleFunc("/facts", s.FactsHandler.HandleState).Methods(http.MethodGet)
	api.Handle("/facts/refresh", middleware.RateLimitMiddleware(s.RefreshLimiter)(http.HandlerFunc(s.FactsHandler.HandleRefresh))).Methods(http.MethodPost)
	api.HandleFunc("/facts/export", s.FactsHandler.HandleExport).Methods(http.MethodGet)
	api.HandleFunc("/facts/runs", s.FactsHandler.HandleRuns).Methods(http.MethodGet)
	api.HandleFunc("/facts/stats", s.FactsHandler.HandleStats).Methods(http.MethodGet)

	// Map screen
	api.HandleFunc("/map", s.MapHandler.HandleState).Methods(http.MethodGet)
	api.HandleFunc("/map/permission", s.MapHandler.HandlePermission).Methods(http.MethodPost)
	api.HandleFunc("/map/locate", s.MapHandler.HandleLocate).Methods(http.MethodPost)
	api.HandleFunc("/map/loaded", s.MapHandler.HandleLoaded).Methods(http.MethodPost)
	api.HandleFunc("/map/location", s.MapHandler.HandleLocation).Methods(http.MethodPost)

	// Runtime settings
	if s.ConfigHandler != nil {
		api.HandleFunc("/config", s.ConfigHandler.HandleGetConfig).Methods(http.MethodGet)
		api.HandleFunc("/config/persistence", s.ConfigHandler.HandleTogglePersistence).Methods(http.MethodPost)
	}

	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}
