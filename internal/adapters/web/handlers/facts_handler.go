package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/lcalzada-xor/factmap/internal/adapters/reporting"
	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"github.com/lcalzada-xor/factmap/internal/core/services/export"
)

// DefaultRunsLimit is used when no limit query parameter is given.
const DefaultRunsLimit = 20

// FactsHandler handles the facts screen endpoints
type FactsHandler struct {
	Service     ports.FactsService
	Runs        ports.RunRepository
	Stats       ports.StatsProvider
	PDFExporter *reporting.PDFExporter
}

// NewFactsHandler creates a new FactsHandler
func NewFactsHandler(service ports.FactsService, runs ports.RunRepository, stats ports.StatsProvider, exporter *reporting.PDFExporter) *FactsHandler {
	return &FactsHandler{
		Service:     service,
		Runs:        runs,
		Stats:       stats,
		PDFExporter: exporter,
	}
}

// HandleState returns the current facts screen state
func (h *FactsHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.State())
}

// HandleRefresh restarts the fetch sequence. The response already carries the loading state.
func (h *FactsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusAccepted, h.Service.Refresh(r.Context()))
}

// HandleExport exports the current list. format is pdf (default), json or csv.
func (h *FactsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	state := h.Service.State()

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="facts.json"`)
		if err := export.ExportFactsJSON(w, state.Facts); err != nil {
			log.Printf("JSON export failed: %v", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="facts.csv"`)
		if err := export.ExportFactsCSV(w, state.Facts); err != nil {
			log.Printf("CSV export failed: %v", err)
		}
	case "pdf":
		h.exportPDF(w, state)
	default:
		http.Error(w, "Unsupported format: "+format, http.StatusBadRequest)
	}
}

func (h *FactsHandler) exportPDF(w http.ResponseWriter, state domain.FactsState) {
	if h.PDFExporter == nil {
		http.Error(w, "PDF export not available", http.StatusServiceUnavailable)
		return
	}

	data, err := h.PDFExporter.ExportFacts(state)
	if err != nil {
		log.Printf("PDF export failed: %v", err)
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="facts.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HandleRuns lists recent fetch sequences, newest first
func (h *FactsHandler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		http.Error(w, "Run log not available", http.StatusServiceUnavailable)
		return
	}

	limit := DefaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid limit %q", raw), http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidLimit) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to list runs: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []domain.FetchRun{}
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := export.ExportRunsCSV(w, runs); err != nil {
			log.Printf("CSV export failed: %v", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

// HandleStats returns aggregate fetch statistics
func (h *FactsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if h.Stats == nil {
		http.Error(w, "Statistics not available", http.StatusServiceUnavailable)
		return
	}

	stats, err := h.Stats.GetStats(r.Context())
	if err != nil {
		http.Error(w, "Failed to compute stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
