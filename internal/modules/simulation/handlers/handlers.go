// Package handlers provides HTTP handlers for portfolio simulation runs.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/frontier/internal/modules/simulation"
	"github.com/aristath/frontier/internal/modules/universe"
)

const defaultLookbackDays = 365

// Handler handles simulation HTTP requests
type Handler struct {
	service   *simulation.Service
	historyDB *universe.HistoryDB
	log       zerolog.Logger
}

// NewHandler creates a new simulation handler
func NewHandler(service *simulation.Service, historyDB *universe.HistoryDB, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		historyDB: historyDB,
		log:       log.With().Str("handler", "simulation").Logger(),
	}
}

// RegisterRoutes registers the simulation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/simulation/run", h.HandleRun)
}

type runRequest struct {
	Symbols         []string `json:"symbols"`
	Simulations     int      `json:"simulations"`
	RiskFreeRate    float64  `json:"risk_free_rate"`
	Seed            *int64   `json:"seed,omitempty"`
	From            string   `json:"from,omitempty"`
	To              string   `json:"to,omitempty"`
	IncludeEnsemble bool     `json:"include_ensemble"`
}

// HandleRun handles POST /api/simulation/run
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Symbols) < 2 {
		h.writeError(w, http.StatusBadRequest, "at least two symbols are required")
		return
	}

	from, to, err := parseWindow(req.From, req.To)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	table, missing, err := h.historyDB.BuildPriceTable(req.Symbols, from, to)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build price table")
		h.writeError(w, http.StatusInternalServerError, "failed to load price history")
		return
	}

	result, err := h.service.Run(simulation.Request{
		Prices:       table,
		Simulations:  req.Simulations,
		RiskFreeRate: req.RiskFreeRate,
		Seed:         req.Seed,
	})
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	data := map[string]interface{}{
		"run_id":        result.RunID,
		"symbols":       result.Symbols,
		"optimal":       result.Optimal,
		"optimal_index": result.OptimalIndex,
		"mean_returns":  result.MeanReturns,
		"covariance":    result.Covariance,
		"observations":  result.Observations,
		"degenerate":    result.Degenerate,
	}
	if req.IncludeEnsemble {
		data["records"] = result.Records
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp":       time.Now().Format(time.RFC3339),
			"simulations":     len(result.Records),
			"window_from":     from.Format("2006-01-02"),
			"window_to":       to.Format("2006-01-02"),
			"missing_symbols": missing,
		},
	})
}

func (h *Handler) writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, simulation.ErrInvalidParameters),
		errors.Is(err, simulation.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, simulation.ErrInsufficientHistory),
		errors.Is(err, simulation.ErrNoValidCandidate):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.log.Error().Err(err).Msg("Simulation run failed")
		h.writeError(w, http.StatusInternalServerError, "simulation failed")
	}
}

func parseWindow(fromStr, toStr string) (time.Time, time.Time, error) {
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -defaultLookbackDays)

	var err error
	if toStr != "" {
		to, err = time.Parse("2006-01-02", toStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'to' date, expected YYYY-MM-DD")
		}
	}
	if fromStr != "" {
		from, err = time.Parse("2006-01-02", fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid 'from' date, expected YYYY-MM-DD")
		}
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.New("'from' must be before 'to'")
	}
	return from, to, nil
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
