// Package mutation applies user edits: remote write first, then the in-memory state.
//
// The pipeline is fail-closed. When the backend write fails the app state is
// left exactly as it was and the user gets a blocking error notification.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
)

var (
	// ErrRemoteWrite means the backend did not confirm the write
	ErrRemoteWrite = errors.New("remote write failed")
	// ErrInvalidInput means the request was rejected before any call
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound means the referenced entity is not in the app state
	ErrNotFound = errors.New("not found")
)

// Gateway is the write side of the API client
type Gateway interface {
	UpdatePortfolio(ctx context.Context, in stoxyapi.PortfolioUpdate) stoxyapi.Result[*stoxyapi.PortfolioRecord]
	CreateHolding(ctx context.Context, in stoxyapi.HoldingInput) stoxyapi.Result[*stoxyapi.HoldingRecord]
	UpdateHolding(ctx context.Context, id int64, in stoxyapi.HoldingUpdate) stoxyapi.Result[*stoxyapi.HoldingRecord]
	DeleteHolding(ctx context.Context, id int64) stoxyapi.Result[*stoxyapi.MessageResponse]
	AddToWatchlist(ctx context.Context, in stoxyapi.WatchlistInput) stoxyapi.Result[*stoxyapi.WatchlistRecord]
	RemoveFromWatchlist(ctx context.Context, id int64) stoxyapi.Result[*stoxyapi.MessageResponse]
	CreateAlert(ctx context.Context, in stoxyapi.AlertInput) stoxyapi.Result[*stoxyapi.AlertRecord]
	UpdateAlert(ctx context.Context, id int64, in stoxyapi.AlertUpdate) stoxyapi.Result[*stoxyapi.AlertRecord]
	DeleteAlert(ctx context.Context, id int64) stoxyapi.Result[*stoxyapi.MessageResponse]
	CreatePortfolio(ctx context.Context, in stoxyapi.ContainerInput) stoxyapi.Result[*stoxyapi.ContainerRecord]
	DeletePortfolio(ctx context.Context, id int64) stoxyapi.Result[*stoxyapi.MessageResponse]
}

// Notifier surfaces messages to the user
type Notifier interface {
	Error(title, message string)
	Info(kind domain.NotificationKind, title, message string)
}

// PortfolioStore persists the client-side portfolio selection
type PortfolioStore interface {
	SavePortfolios(p []domain.PortfolioContainer) error
	SaveCurrentPortfolio(id int64) error
}

// Pipeline runs mutations against the gateway and the app state
type Pipeline struct {
	gateway  Gateway
	state    *state.AppState
	store    PortfolioStore
	notifier Notifier
	events   *events.Manager
	log      zerolog.Logger
	random   func() float64
}

// New creates a mutation pipeline. store and eventManager may be nil.
func New(gateway Gateway, appState *state.AppState, store PortfolioStore, notifier Notifier, eventManager *events.Manager, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		gateway:  gateway,
		state:    appState,
		store:    store,
		notifier: notifier,
		events:   eventManager,
		log:      log.With().Str("component", "mutation").Logger(),
		random:   rand.Float64,
	}
}

// written unwraps a write result; a fallback or a null body is a failure
func written[T any](res stoxyapi.Result[*T]) (*T, error) {
	if res.Failed() {
		return nil, fmt.Errorf("%w: %v", ErrRemoteWrite, res.Err)
	}
	if res.Data == nil {
		return nil, fmt.Errorf("%w: empty response", ErrRemoteWrite)
	}
	return res.Data, nil
}

func (p *Pipeline) fail(op, message string, err error) error {
	p.log.Error().Err(err).Str("op", op).Msg("Mutation failed, state unchanged")
	p.notifier.Error(message, err.Error())
	return fmt.Errorf("%s: %w", op, err)
}

func (p *Pipeline) emit(t events.EventType, data map[string]interface{}) {
	if p.events != nil {
		p.events.Emit(t, "mutation", data)
	}
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// HoldingRequest is the add-position form
type HoldingRequest struct {
	Symbol   string
	Type     domain.AssetType
	Quantity float64
	Price    float64
	Date     string // YYYY-MM-DD
}

// CreateHolding writes a new position and appends the stored version to the state
func (p *Pipeline) CreateHolding(ctx context.Context, req HoldingRequest) (domain.Holding, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" || !finite(req.Quantity, req.Price) || req.Quantity <= 0 || req.Price < 0 {
		return domain.Holding{}, p.fail("create holding", "Invalid position", fmt.Errorf("%w: symbol, quantity and price are required", ErrInvalidInput))
	}
	if req.Type == "" {
		req.Type = domain.AssetStock
	}

	rec, err := written(p.gateway.CreateHolding(ctx, stoxyapi.HoldingInput{
		Symbol:        symbol,
		Name:          symbol + " Holdings",
		Quantity:      req.Quantity,
		Value:         req.Quantity * req.Price,
		Change:        (p.random() - 0.5) * 10,
		ChangePercent: (p.random() - 0.5) * 5,
		PurchasePrice: req.Price,
		PurchaseDate:  req.Date,
		Type:          string(req.Type),
	}))
	if err != nil {
		return domain.Holding{}, p.fail("create holding", "Could not save the position. Try again.", err)
	}

	holding, ok := rec.ToDomain()
	if !ok {
		return domain.Holding{}, p.fail("create holding", "Could not save the position. Try again.", fmt.Errorf("%w: malformed response", ErrRemoteWrite))
	}

	p.state.Update(func(d *state.Data) { d.Holdings = append(d.Holdings, holding) })

	p.notifier.Info(domain.NotificationPositionAdded, "Position added",
		fmt.Sprintf("%s: %s units added to your portfolio", symbol, formatQuantity(req.Quantity)))
	p.emit(events.HoldingCreated, map[string]interface{}{"id": holding.ID, "symbol": holding.Symbol})
	p.log.Info().Str("symbol", symbol).Msg("Position added")

	return holding, nil
}

// UpdateHolding rewrites a holding's market values
func (p *Pipeline) UpdateHolding(ctx context.Context, id int64, in stoxyapi.HoldingUpdate) (domain.Holding, error) {
	if !finite(in.Quantity, in.Value, in.Change, in.ChangePercent) {
		return domain.Holding{}, p.fail("update holding", "Invalid position", fmt.Errorf("%w: values must be numbers", ErrInvalidInput))
	}

	rec, err := written(p.gateway.UpdateHolding(ctx, id, in))
	if err != nil {
		return domain.Holding{}, p.fail("update holding", "Could not update the position.", err)
	}
	holding, ok := rec.ToDomain()
	if !ok {
		return domain.Holding{}, p.fail("update holding", "Could not update the position.", fmt.Errorf("%w: malformed response", ErrRemoteWrite))
	}

	p.state.Update(func(d *state.Data) {
		if i := d.FindHolding(id); i >= 0 {
			d.Holdings[i] = holding
		} else {
			d.Holdings = append(d.Holdings, holding)
		}
	})
	p.emit(events.HoldingUpdated, map[string]interface{}{"id": id, "symbol": holding.Symbol})
	return holding, nil
}

// DeleteHolding deletes a position remotely, then drops it from the state
func (p *Pipeline) DeleteHolding(ctx context.Context, id int64) error {
	if _, err := written(p.gateway.DeleteHolding(ctx, id)); err != nil {
		return p.fail("delete holding", "Could not delete the position.", err)
	}

	p.state.Update(func(d *state.Data) {
		if i := d.FindHolding(id); i >= 0 {
			d.Holdings = append(d.Holdings[:i], d.Holdings[i+1:]...)
		}
	})
	p.emit(events.HoldingDeleted, map[string]interface{}{"id": id})
	return nil
}

// AlertRequest is the create-alert form
type AlertRequest struct {
	Symbol    string
	Condition domain.AlertCondition
	Value     float64
}

// CreateAlert writes a new active alert and appends it to the state
func (p *Pipeline) CreateAlert(ctx context.Context, req AlertRequest) (domain.Alert, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" || !req.Condition.Valid() || !finite(req.Value) {
		return domain.Alert{}, p.fail("create alert", "Invalid alert", fmt.Errorf("%w: symbol, condition and value are required", ErrInvalidInput))
	}

	active := true
	rec, err := written(p.gateway.CreateAlert(ctx, stoxyapi.AlertInput{
		Symbol:    symbol,
		Condition: string(req.Condition),
		Value:     req.Value,
		Active:    &active,
	}))
	if err != nil {
		return domain.Alert{}, p.fail("create alert", "Could not create the alert. Try again.", err)
	}
	alert, ok := rec.ToDomain()
	if !ok {
		return domain.Alert{}, p.fail("create alert", "Could not create the alert. Try again.", fmt.Errorf("%w: malformed response", ErrRemoteWrite))
	}

	p.state.Update(func(d *state.Data) { d.Alerts = append(d.Alerts, alert) })
	p.emit(events.AlertCreated, map[string]interface{}{"id": alert.ID, "symbol": alert.Symbol})
	return alert, nil
}

// SetAlertActive toggles an alert; the triggered flag is sent unchanged
func (p *Pipeline) SetAlertActive(ctx context.Context, id int64, active bool) (domain.Alert, error) {
	var current domain.Alert
	found := false
	p.state.Read(func(d *state.Data) {
		if i := d.FindAlert(id); i >= 0 {
			current, found = d.Alerts[i], true
		}
	})
	if !found {
		return domain.Alert{}, p.fail("update alert", "Alert not found", fmt.Errorf("%w: alert %d", ErrNotFound, id))
	}

	rec, err := written(p.gateway.UpdateAlert(ctx, id, stoxyapi.AlertUpdate{Active: active, Triggered: current.Triggered}))
	if err != nil {
		return domain.Alert{}, p.fail("update alert", "Could not update the alert.", err)
	}
	alert, ok := rec.ToDomain()
	if !ok {
		return domain.Alert{}, p.fail("update alert", "Could not update the alert.", fmt.Errorf("%w: malformed response", ErrRemoteWrite))
	}

	p.state.Update(func(d *state.Data) {
		if i := d.FindAlert(id); i >= 0 {
			d.Alerts[i] = alert
		}
	})
	p.emit(events.AlertUpdated, map[string]interface{}{"id": id, "active": alert.Active})
	return alert, nil
}

// DeleteAlert deletes an alert remotely, then drops it from the state
func (p *Pipeline) DeleteAlert(ctx context.Context, id int64) error {
	if _, err := written(p.gateway.DeleteAlert(ctx, id)); err != nil {
		return p.fail("delete alert", "Could not delete the alert.", err)
	}

	p.state.Update(func(d *state.Data) {
		if i := d.FindAlert(id); i >= 0 {
			d.Alerts = append(d.Alerts[:i], d.Alerts[i+1:]...)
		}
	})
	p.emit(events.AlertDeleted, map[string]interface{}{"id": id})
	return nil
}

// UpdatePortfolio replaces the portfolio summary
func (p *Pipeline) UpdatePortfolio(ctx context.Context, in domain.Portfolio) (domain.Portfolio, error) {
	update := stoxyapi.PortfolioUpdate{
		TotalValue:       in.TotalValue.Float(),
		TodayGain:        in.TodayGain.Float(),
		TodayGainPercent: in.TodayGainPercent.Float(),
		Stocks:           in.Stocks.Float(),
		Crypto:           in.Crypto.Float(),
	}
	if !finite(update.TotalValue, update.TodayGain, update.TodayGainPercent, update.Stocks, update.Crypto) {
		return domain.Portfolio{}, p.fail("update portfolio", "Invalid portfolio", fmt.Errorf("%w: values must be numbers", ErrInvalidInput))
	}

	rec, err := written(p.gateway.UpdatePortfolio(ctx, update))
	if err != nil {
		return domain.Portfolio{}, p.fail("update portfolio", "Could not save the portfolio.", err)
	}
	portfolio, ok := rec.ToDomain()
	if !ok {
		return domain.Portfolio{}, p.fail("update portfolio", "Could not save the portfolio.", fmt.Errorf("%w: malformed response", ErrRemoteWrite))
	}

	p.state.Update(func(d *state.Data) { d.Portfolio = portfolio })
	p.emit(events.PortfolioUpdated, map[string]interface{}{"total_value": portfolio.TotalValue.Float()})
	return portfolio, nil
}

// AddToWatchlist tracks a new symbol
func (p *Pipeline) AddToWatchlist(ctx context.Context, in stoxyapi.WatchlistInput) (domain.WatchlistItem, error) {
	in.Symbol = strings.ToUpper(strings.TrimSpace(in.Symbol))
	if in.Symbol == "" || !finite(in.Price, in.Change, in.ChangePercent) {
		return domain.WatchlistItem{}, p.fail("add to watchlist", "Invalid symbol", fmt.Errorf("%w: symbol and price are required", ErrInvalidInput))
	}

	rec, err := written(p.gateway.AddToWatchlist(ctx, in))
	if err != nil {
		return domain.WatchlistItem{}, p.fail("add to watchlist", "Could not add the symbol to the watchlist.", err)
	}
	item, ok := rec.ToDomain()
	if !ok {
		return domain.WatchlistItem{}, p.fail("add to watchlist", "Could not add the symbol to the watchlist.", fmt.Errorf("%w: malformed response", ErrRemoteWrite))
	}

	p.state.Update(func(d *state.Data) {
		if i := d.FindWatchlistSymbol(item.Symbol); i >= 0 {
			d.Watchlist[i] = item
		} else {
			d.Watchlist = append(d.Watchlist, item)
		}
	})
	p.emit(events.WatchlistAdded, map[string]interface{}{"id": item.ID, "symbol": item.Symbol})
	return item, nil
}

// RemoveFromWatchlist stops tracking a symbol
func (p *Pipeline) RemoveFromWatchlist(ctx context.Context, id int64) error {
	if _, err := written(p.gateway.RemoveFromWatchlist(ctx, id)); err != nil {
		return p.fail("remove from watchlist", "Could not remove the symbol.", err)
	}

	p.state.Update(func(d *state.Data) {
		for i, w := range d.Watchlist {
			if w.ID != nil && *w.ID == id {
				d.Watchlist = append(d.Watchlist[:i], d.Watchlist[i+1:]...)
				return
			}
		}
	})
	p.emit(events.WatchlistRemoved, map[string]interface{}{"id": id})
	return nil
}

// CreatePortfolio creates a named portfolio and selects it.
// The gateway's mock fallback counts as a failure here.
func (p *Pipeline) CreatePortfolio(ctx context.Context, in stoxyapi.ContainerInput) (domain.PortfolioContainer, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.PortfolioContainer{}, p.fail("create portfolio", "Invalid portfolio", fmt.Errorf("%w: name is required", ErrInvalidInput))
	}
	if in.Currency == "" {
		in.Currency = "EUR"
	}

	rec, err := written(p.gateway.CreatePortfolio(ctx, in))
	if err != nil {
		return domain.PortfolioContainer{}, p.fail("create portfolio", "Could not create the portfolio.", err)
	}
	container, ok := rec.ToDomain()
	if !ok {
		return domain.PortfolioContainer{}, p.fail("create portfolio", "Could not create the portfolio.", fmt.Errorf("%w: malformed response", ErrRemoteWrite))
	}

	var containers []domain.PortfolioContainer
	p.state.Update(func(d *state.Data) {
		d.Portfolios = append(d.Portfolios, container)
		d.CurrentPortfolio = container.ID
		containers = append(containers, d.Portfolios...)
	})
	p.persistSelection(containers, container.ID)
	p.emit(events.PortfolioCreated, map[string]interface{}{"id": container.ID, "name": container.Name})
	return container, nil
}

// DeletePortfolio deletes a named portfolio. If it was current, the first
// remaining one becomes current.
func (p *Pipeline) DeletePortfolio(ctx context.Context, id int64) error {
	if _, err := written(p.gateway.DeletePortfolio(ctx, id)); err != nil {
		return p.fail("delete portfolio", "Could not delete the portfolio.", err)
	}

	var containers []domain.PortfolioContainer
	var current int64
	p.state.Update(func(d *state.Data) {
		for i, c := range d.Portfolios {
			if c.ID == id {
				d.Portfolios = append(d.Portfolios[:i], d.Portfolios[i+1:]...)
				break
			}
		}
		if d.CurrentPortfolio == id {
			d.CurrentPortfolio = 0
			if len(d.Portfolios) > 0 {
				d.CurrentPortfolio = d.Portfolios[0].ID
			}
		}
		containers = append(containers, d.Portfolios...)
		current = d.CurrentPortfolio
	})
	p.persistSelection(containers, current)
	p.emit(events.PortfolioDeleted, map[string]interface{}{"id": id})
	return nil
}

// SelectPortfolio makes id the current portfolio. Selection is client-local.
func (p *Pipeline) SelectPortfolio(id int64) error {
	found := false
	var containers []domain.PortfolioContainer
	p.state.Update(func(d *state.Data) {
		for _, c := range d.Portfolios {
			if c.ID == id {
				found = true
				d.CurrentPortfolio = id
				break
			}
		}
		containers = append(containers, d.Portfolios...)
	})
	if !found {
		return fmt.Errorf("select portfolio: %w: portfolio %d", ErrNotFound, id)
	}

	p.persistSelection(containers, id)
	p.emit(events.PortfolioSelected, map[string]interface{}{"id": id})
	return nil
}

func (p *Pipeline) persistSelection(containers []domain.PortfolioContainer, current int64) {
	if p.store == nil {
		return
	}
	if err := p.store.SavePortfolios(containers); err != nil {
		p.log.Warn().Err(err).Msg("Failed to persist portfolios locally")
	}
	if err := p.store.SaveCurrentPortfolio(current); err != nil {
		p.log.Warn().Err(err).Msg("Failed to persist current portfolio locally")
	}
}

func formatQuantity(q float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.8f", q), "0"), ".")
}
