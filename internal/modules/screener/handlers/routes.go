package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all screener routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/screener", func(r chi.Router) {
		r.Get("/{symbol}", h.HandleScreen)
		r.Get("/{symbol}/narrative", h.HandleNarrative)
		r.Post("/{symbol}/sync", h.HandleSync)
	})
	r.Route("/backtest", func(r chi.Router) {
		r.Post("/run", h.HandleBacktest)
	})
}
