// Package handlers provides HTTP handlers for universe management.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/modules/universe"
)

// Handler handles universe HTTP requests
type Handler struct {
	historyDB *universe.HistoryDB
	sync      *universe.SyncService
	symbols   []string
	log       zerolog.Logger
}

// NewHandler creates a new universe handler. symbols is the configured
// default universe used when a sync request names none.
func NewHandler(historyDB *universe.HistoryDB, sync *universe.SyncService, symbols []string, log zerolog.Logger) *Handler {
	return &Handler{
		historyDB: historyDB,
		sync:      sync,
		symbols:   symbols,
		log:       log.With().Str("handler", "universe").Logger(),
	}
}

// RegisterRoutes registers the universe routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/universe/symbols", h.HandleListSymbols)
	r.Post("/universe/sync", h.HandleSync)
}

// HandleListSymbols handles GET /api/universe/symbols
func (h *Handler) HandleListSymbols(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.historyDB.ListSymbols()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list symbols")
		h.writeError(w, http.StatusInternalServerError, "failed to list symbols")
		return
	}

	type symbolInfo struct {
		Symbol       string `json:"symbol"`
		Observations int    `json:"observations"`
	}
	infos := make([]symbolInfo, 0, len(symbols))
	for _, symbol := range symbols {
		n, err := h.historyDB.CountObservations(symbol)
		if err != nil {
			h.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to count observations")
			continue
		}
		infos = append(infos, symbolInfo{Symbol: symbol, Observations: n})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": infos,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(infos),
		},
	})
}

type syncRequest struct {
	Symbols []string `json:"symbols,omitempty"`
}

// HandleSync handles POST /api/universe/sync
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	symbols := req.Symbols
	if len(symbols) == 0 {
		symbols = h.symbols
	}
	if len(symbols) == 0 {
		h.writeError(w, http.StatusBadRequest, "no symbols configured or requested")
		return
	}

	result, err := h.sync.Sync(r.Context(), symbols)
	if err != nil {
		h.log.Error().Err(err).Msg("Universe sync failed")
		h.writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": message,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}
