// Package handlers provides HTTP handlers for holdings.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/modules/holdings"
)

// Handler handles holdings HTTP requests
type Handler struct {
	repo *holdings.Repository
	log  zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(repo *holdings.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "holdings").Logger(),
	}
}

// HandleList handles GET /api/holdings
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), modules.UserID(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch holdings")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error fetching holdings")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, items)
}

// HandleGet handles GET /api/holdings/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := modules.IDParam(r)
	if err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.repo.Get(r.Context(), modules.UserID(r.Context()), id)
	if errors.Is(err, modules.ErrNotFound) {
		modules.WriteError(w, h.log, http.StatusNotFound, "Holding not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to fetch holding")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error fetching holding")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, item)
}

// HandleCreate handles POST /api/holdings
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in holdings.Input
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if in.Symbol == "" || strings.TrimSpace(in.Name) == "" {
		modules.WriteError(w, h.log, http.StatusBadRequest, "symbol and name are required")
		return
	}

	item, err := h.repo.Create(r.Context(), modules.UserID(r.Context()), in)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", in.Symbol).Msg("Failed to create holding")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error creating holding")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusCreated, item)
}

// HandleUpdate handles PUT /api/holdings/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := modules.IDParam(r)
	if err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	var in holdings.Update
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.repo.Update(r.Context(), modules.UserID(r.Context()), id, in)
	if errors.Is(err, modules.ErrNotFound) {
		modules.WriteError(w, h.log, http.StatusNotFound, "Holding not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to update holding")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error updating holding")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, item)
}

// HandleDelete handles DELETE /api/holdings/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := modules.IDParam(r)
	if err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	err = h.repo.Delete(r.Context(), modules.UserID(r.Context()), id)
	if errors.Is(err, modules.ErrNotFound) {
		modules.WriteError(w, h.log, http.StatusNotFound, "Holding not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete holding")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error deleting holding")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, modules.Message{Message: "Holding deleted"})
}
