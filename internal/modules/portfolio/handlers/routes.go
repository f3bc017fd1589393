package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the portfolio and portfolios routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.HandleGetSummary)
		r.Put("/", h.HandleUpdateSummary)
	})

	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleListContainers)
		r.Post("/", h.HandleCreateContainer)
		r.Delete("/{id}", h.HandleDeleteContainer)
	})
}
