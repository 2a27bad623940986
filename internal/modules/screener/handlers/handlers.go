// Package handlers provides HTTP handlers for the screener module.
package handlers

import (
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/nugraha/bandarscope/internal/domain"
	"github.com/nugraha/bandarscope/internal/modules/backtest"
	"github.com/nugraha/bandarscope/internal/modules/narrative"
	"github.com/nugraha/bandarscope/internal/modules/screener"
)

// Handlers holds the screener HTTP handlers.
type Handlers struct {
	service  *screener.Service
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandlers creates screener handlers.
func NewHandlers(service *screener.Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service:  service,
		validate: validator.New(),
		log:      log.With().Str("handlers", "screener").Logger(),
	}
}

// HandleScreen runs a full scoring pass for one symbol.
// GET /api/screener/{symbol}
func (h *Handlers) HandleScreen(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if symbol == "" {
		h.respondError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	result, err := h.service.Screen(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.Error().Err(err).Str("symbol", symbol).Msg("screen failed")
		h.respondError(w, http.StatusBadGateway, "failed to screen symbol")
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// HandleNarrative returns only the rendered narrative for one symbol.
// GET /api/screener/{symbol}/narrative
func (h *Handlers) HandleNarrative(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	result, err := h.service.Screen(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("narrative failed")
		h.respondError(w, http.StatusBadGateway, "failed to screen symbol")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":    symbol,
		"narrative": result.Narrative,
		"text":      narrative.RenderText(result.Narrative),
	})
}

// HandleSync pulls fresh upstream data for one symbol.
// POST /api/screener/{symbol}/sync
func (h *Handlers) HandleSync(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if err := h.service.Sync(r.Context(), symbol); err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("sync failed")
		h.respondError(w, http.StatusBadGateway, "failed to sync symbol")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "synced", "symbol": symbol})
}

// backtestRequest is the POST body for a backtest run.
type backtestRequest struct {
	Days          int     `json:"days" validate:"required,gt=0,lte=2000"`
	StartCash     float64 `json:"start_cash" validate:"required,gt=0"`
	BuyThreshold  int     `json:"buy_threshold" validate:"gte=0,lte=100"`
	SellThreshold int     `json:"sell_threshold" validate:"gte=0,lte=100"`
	Seed          int64   `json:"seed"`
}

// HandleBacktest runs a simulation with the embedded scorer.
// POST /api/backtest/run
func (h *Handlers) HandleBacktest(w http.ResponseWriter, r *http.Request) {
	var req backtestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := backtest.Config{
		Days:          req.Days,
		StartCash:     req.StartCash,
		BuyThreshold:  req.BuyThreshold,
		SellThreshold: req.SellThreshold,
		Seed:          req.Seed,
	}
	if cfg.BuyThreshold == 0 && cfg.SellThreshold == 0 {
		defaults := backtest.DefaultConfig()
		cfg.BuyThreshold = defaults.BuyThreshold
		cfg.SellThreshold = defaults.SellThreshold
	}

	sim := backtest.New(cfg, rand.New(rand.NewSource(cfg.Seed)), h.log)
	h.respondJSON(w, http.StatusOK, sim.Run())
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
