package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
)

// NavHandler exposes the screen navigator
type NavHandler struct {
	Navigator ports.Navigator
}

// NewNavHandler creates a new NavHandler
func NewNavHandler(nav ports.Navigator) *NavHandler {
	return &NavHandler{
		Navigator: nav,
	}
}

// HandleState returns the current destination and back stack
func (h *NavHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Navigator.State())
}

// HandleNavigate switches to the destination named in the path
func (h *NavHandler) HandleNavigate(w http.ResponseWriter, r *http.Request) {
	dest := domain.Destination(mux.Vars(r)["destination"])

	state, err := h.Navigator.Navigate(r.Context(), dest)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownDestination) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Navigation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// HandleBack pops the back stack
func (h *NavHandler) HandleBack(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Navigator.Back(r.Context()))
}
