// Package handlers provides HTTP handlers for price alerts.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/modules/alerts"
)

// Handler handles alert HTTP requests
type Handler struct {
	repo *alerts.Repository
	log  zerolog.Logger
}

// NewHandler creates a new alerts handler
func NewHandler(repo *alerts.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "alerts").Logger(),
	}
}

// HandleList handles GET /api/alerts
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.List(r.Context(), modules.UserID(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch alerts")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error fetching alerts")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, items)
}

// HandleCreate handles POST /api/alerts
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in alerts.Input
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if in.Symbol == "" {
		modules.WriteError(w, h.log, http.StatusBadRequest, "symbol is required")
		return
	}
	if !in.Condition.Valid() {
		modules.WriteError(w, h.log, http.StatusBadRequest, "condition must be above, below or change")
		return
	}

	alert, err := h.repo.Create(r.Context(), modules.UserID(r.Context()), in)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", in.Symbol).Msg("Failed to create alert")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error creating alert")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusCreated, alert)
}

// HandleUpdate handles PUT /api/alerts/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := modules.IDParam(r)
	if err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	var in alerts.Update
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	alert, err := h.repo.Update(r.Context(), modules.UserID(r.Context()), id, in)
	if errors.Is(err, modules.ErrNotFound) {
		modules.WriteError(w, h.log, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to update alert")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error updating alert")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, alert)
}

// HandleDelete handles DELETE /api/alerts/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := modules.IDParam(r)
	if err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	err = h.repo.Delete(r.Context(), modules.UserID(r.Context()), id)
	if errors.Is(err, modules.ErrNotFound) {
		modules.WriteError(w, h.log, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete alert")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error deleting alert")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, modules.Message{Message: "Alert deleted"})
}
