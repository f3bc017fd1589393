package dashboard

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/mutation"
)

func (s *Server) registerMutationRoutes(r chi.Router) {
	r.Put("/portfolio", s.handleUpdatePortfolio)

	r.Post("/holdings", s.handleCreateHolding)
	r.Put("/holdings/{id}", s.handleUpdateHolding)
	r.Delete("/holdings/{id}", s.handleDeleteHolding)

	r.Post("/watchlist", s.handleAddToWatchlist)
	r.Delete("/watchlist/{id}", s.handleRemoveFromWatchlist)

	r.Post("/alerts", s.handleCreateAlert)
	r.Put("/alerts/{id}/active", s.handleSetAlertActive)
	r.Delete("/alerts/{id}", s.handleDeleteAlert)

	r.Post("/portfolios", s.handleCreatePortfolio)
	r.Delete("/portfolios/{id}", s.handleDeletePortfolio)
	r.Post("/portfolios/{id}/select", s.handleSelectPortfolio)
}

// writeMutationError maps pipeline failures onto status codes. The state
// is untouched for all of them.
func (s *Server) writeMutationError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, mutation.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, mutation.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, mutation.ErrRemoteWrite):
		status = http.StatusBadGateway
	}
	modules.WriteError(w, s.log, status, err.Error())
}

func (s *Server) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := modules.IDParam(r)
	if err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

// holdingForm is the add-position form body
type holdingForm struct {
	Symbol   string           `json:"symbol"`
	Type     domain.AssetType `json:"type"`
	Quantity float64          `json:"quantity"`
	Price    float64          `json:"price"`
	Date     string           `json:"date"`
}

type alertForm struct {
	Symbol    string                `json:"symbol"`
	Condition domain.AlertCondition `json:"condition"`
	Value     float64               `json:"value"`
}

type activeForm struct {
	Active bool `json:"active"`
}

func (s *Server) handleUpdatePortfolio(w http.ResponseWriter, r *http.Request) {
	var in domain.Portfolio
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	out, err := s.pipeline.UpdatePortfolio(r.Context(), in)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, out)
}

func (s *Server) handleCreateHolding(w http.ResponseWriter, r *http.Request) {
	var form holdingForm
	if err := modules.DecodeJSON(r, &form); err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	h, err := s.pipeline.CreateHolding(r.Context(), mutation.HoldingRequest{
		Symbol:   form.Symbol,
		Type:     form.Type,
		Quantity: form.Quantity,
		Price:    form.Price,
		Date:     form.Date,
	})
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusCreated, h)
}

func (s *Server) handleUpdateHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	var in stoxyapi.HoldingUpdate
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	h, err := s.pipeline.UpdateHolding(r.Context(), id, in)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, h)
}

func (s *Server) handleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if err := s.pipeline.DeleteHolding(r.Context(), id); err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, modules.Message{Message: "Holding deleted"})
}

func (s *Server) handleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var in stoxyapi.WatchlistInput
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	item, err := s.pipeline.AddToWatchlist(r.Context(), in)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusCreated, item)
}

func (s *Server) handleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if err := s.pipeline.RemoveFromWatchlist(r.Context(), id); err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, modules.Message{Message: "Removed from watchlist"})
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var form alertForm
	if err := modules.DecodeJSON(r, &form); err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	a, err := s.pipeline.CreateAlert(r.Context(), mutation.AlertRequest{
		Symbol:    form.Symbol,
		Condition: form.Condition,
		Value:     form.Value,
	})
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusCreated, a)
}

func (s *Server) handleSetAlertActive(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	var form activeForm
	if err := modules.DecodeJSON(r, &form); err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	a, err := s.pipeline.SetAlertActive(r.Context(), id, form.Active)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, a)
}

func (s *Server) handleDeleteAlert(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if err := s.pipeline.DeleteAlert(r.Context(), id); err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, modules.Message{Message: "Alert deleted"})
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	var in stoxyapi.ContainerInput
	if err := modules.DecodeJSON(r, &in); err != nil {
		modules.WriteError(w, s.log, http.StatusBadRequest, "Invalid request body")
		return
	}
	c, err := s.pipeline.CreatePortfolio(r.Context(), in)
	if err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusCreated, c)
}

func (s *Server) handleDeletePortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if err := s.pipeline.DeletePortfolio(r.Context(), id); err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, modules.Message{Message: "Portfolio deleted"})
}

func (s *Server) handleSelectPortfolio(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if err := s.pipeline.SelectPortfolio(id); err != nil {
		s.writeMutationError(w, err)
		return
	}
	modules.WriteJSON(w, s.log, http.StatusOK, modules.Message{Message: "Portfolio selected"})
}
