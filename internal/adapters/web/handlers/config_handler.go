package handlers

import (
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/factmap/internal/core/ports"
)

// ConfigHandler handles runtime settings
type ConfigHandler struct {
	Persistence ports.PersistenceToggle
}

// NewConfigHandler creates a new ConfigHandler
func NewConfigHandler(persistence ports.PersistenceToggle) *ConfigHandler {
	return &ConfigHandler{
		Persistence: persistence,
	}
}

// HandleGetConfig returns current settings
func (h *ConfigHandler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"persistenceEnabled": h.Persistence.IsEnabled(),
	})
}

// HandleTogglePersistence switches the fetch run log on or off
func (h *ConfigHandler) HandleTogglePersistence(w http.ResponseWriter, r *http.Request) {
	enabled, err := strconv.ParseBool(r.URL.Query().Get("enabled"))
	if err != nil {
		http.Error(w, "Invalid enabled value", http.StatusBadRequest)
		return
	}
	h.Persistence.SetEnabled(enabled)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "persistence_updated",
		"enabled": enabled,
	})
}
