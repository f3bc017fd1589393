// Package handlers serves the illustrative market data: symbol search,
// index quotes, movers, crypto prices and headlines.
//
// The data is static. The same snapshots back the dashboard gateway when the
// backend is down, so both sides always agree on the shapes.
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/modules"
)

// Handler handles market data requests
type Handler struct {
	log zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(log zerolog.Logger) *Handler {
	return &Handler{
		log: log.With().Str("handler", "market").Logger(),
	}
}

// RegisterRoutes registers the market, crypto, search and news routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/search", h.HandleSearch)
	r.Get("/market/indices", h.HandleIndices)
	r.Get("/market/movers", h.HandleMovers)
	r.Get("/crypto/prices", h.HandleCryptoPrices)
	r.Get("/crypto/top", h.HandleTopCryptos)
	r.Get("/news", h.HandleNews)
}

// HandleSearch handles GET /api/search?q=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		modules.WriteJSON(w, h.log, http.StatusOK, []stoxyapi.SearchResult{})
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, stoxyapi.FilterSearchSnapshot(q))
}

// HandleIndices handles GET /api/market/indices
func (h *Handler) HandleIndices(w http.ResponseWriter, r *http.Request) {
	modules.WriteJSON(w, h.log, http.StatusOK, stoxyapi.IndicesSnapshot())
}

// HandleMovers handles GET /api/market/movers
func (h *Handler) HandleMovers(w http.ResponseWriter, r *http.Request) {
	modules.WriteJSON(w, h.log, http.StatusOK, stoxyapi.MoversSnapshot())
}

// HandleCryptoPrices handles GET /api/crypto/prices
func (h *Handler) HandleCryptoPrices(w http.ResponseWriter, r *http.Request) {
	modules.WriteJSON(w, h.log, http.StatusOK, stoxyapi.CryptoPricesSnapshot())
}

// HandleTopCryptos handles GET /api/crypto/top
func (h *Handler) HandleTopCryptos(w http.ResponseWriter, r *http.Request) {
	modules.WriteJSON(w, h.log, http.StatusOK, stoxyapi.TopCryptosSnapshot())
}

// HandleNews handles GET /api/news
func (h *Handler) HandleNews(w http.ResponseWriter, r *http.Request) {
	modules.WriteJSON(w, h.log, http.StatusOK, stoxyapi.NewsSnapshot())
}
