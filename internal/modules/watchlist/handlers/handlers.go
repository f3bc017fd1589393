// Package handlers provides HTTP handlers for the watchlist.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/modules/watchlist"
)

// Handler handles watchlist HTTP requests
type Handler struct {
	repo *watchlist.Repository
	log  zerolog.Logger
}

// NewHandler creates a new watchlist handler
func NewHandler(repo *watchlist.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "watchlist").Logger(),
	}
}

// RegisterRoutes registers the watchlist routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleAdd)
		r.Delete("/{id}", h.HandleRemove)
	})
}

// HandleList handles GET /api/watchlist
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), modules.UserID(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch watchlist")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error fetching watchlist")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, items)
}

// HandleAdd handles POST /api/watchlist
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var in watchlist.Input
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if in.Symbol == "" || strings.TrimSpace(in.Name) == "" {
		modules.WriteError(w, h.log, http.StatusBadRequest, "symbol and name are required")
		return
	}

	item, err := h.repo.Add(r.Context(), modules.UserID(r.Context()), in)
	if err != nil {
		// duplicates land here too
		h.log.Error().Err(err).Str("symbol", in.Symbol).Msg("Failed to add to watchlist")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error adding to watchlist")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusCreated, item)
}

// HandleRemove handles DELETE /api/watchlist/{id}
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := modules.IDParam(r)
	if err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	err = h.repo.Remove(r.Context(), modules.UserID(r.Context()), id)
	if errors.Is(err, modules.ErrNotFound) {
		modules.WriteError(w, h.log, http.StatusNotFound, "Watchlist item not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to remove from watchlist")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error removing from watchlist")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, modules.Message{Message: "Removed from watchlist"})
}
