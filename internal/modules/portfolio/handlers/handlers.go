// Package handlers provides HTTP handlers for the portfolio summary and containers.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	repo *portfolio.Repository
	log  zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(repo *portfolio.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "portfolio").Logger(),
	}
}

// HandleGetSummary handles GET /api/portfolio. A user without a summary gets {}.
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.GetSummary(r.Context(), modules.UserID(r.Context()))
	if errors.Is(err, modules.ErrNotFound) {
		modules.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch portfolio")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error fetching portfolio")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, summary)
}

// HandleUpdateSummary handles PUT /api/portfolio
func (h *Handler) HandleUpdateSummary(w http.ResponseWriter, r *http.Request) {
	var in portfolio.SummaryInput
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := h.repo.UpsertSummary(r.Context(), modules.UserID(r.Context()), in)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to update portfolio")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error updating portfolio")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, summary)
}

// HandleListContainers handles GET /api/portfolios
func (h *Handler) HandleListContainers(w http.ResponseWriter, r *http.Request) {
	containers, err := h.repo.ListContainers(r.Context(), modules.UserID(r.Context()))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch portfolios")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error fetching portfolios")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, containers)
}

// HandleCreateContainer handles POST /api/portfolios
func (h *Handler) HandleCreateContainer(w http.ResponseWriter, r *http.Request) {
	var in portfolio.ContainerInput
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		modules.WriteError(w, h.log, http.StatusBadRequest, "name is required")
		return
	}

	container, err := h.repo.CreateContainer(r.Context(), modules.UserID(r.Context()), in)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create portfolio")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error creating portfolio")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusCreated, container)
}

// HandleDeleteContainer handles DELETE /api/portfolios/{id}
func (h *Handler) HandleDeleteContainer(w http.ResponseWriter, r *http.Request) {
	id, err := modules.IDParam(r)
	if err != nil {
		modules.WriteError(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	err = h.repo.DeleteContainer(r.Context(), modules.UserID(r.Context()), id)
	if errors.Is(err, modules.ErrNotFound) {
		modules.WriteError(w, h.log, http.StatusNotFound, "Portfolio not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("id", id).Msg("Failed to delete portfolio")
		modules.WriteError(w, h.log, http.StatusInternalServerError, "Error deleting portfolio")
		return
	}
	modules.WriteJSON(w, h.log, http.StatusOK, modules.Message{Message: "Portfolio deleted"})
}
