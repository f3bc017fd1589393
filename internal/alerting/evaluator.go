// Package alerting evaluates price alerts against the watchlist after each tick.
package alerting

import (
	"context"
	"math"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/format"
	"github.com/aristath/stoxy/internal/simulation"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
)

// Notifier records a user-facing notification
type Notifier interface {
	Notify(n domain.Notification) domain.Notification
}

// Evaluator fires each active alert at most once. A fired alert stays
// triggered for good; nothing in the client re-arms it.
type Evaluator struct {
	state    *state.AppState
	notifier Notifier
	events   *events.Manager
	log      zerolog.Logger
}

var _ simulation.Observer = (*Evaluator)(nil)

// NewEvaluator creates an alert evaluator. eventManager may be nil.
func NewEvaluator(appState *state.AppState, notifier Notifier, eventManager *events.Manager, log zerolog.Logger) *Evaluator {
	return &Evaluator{
		state:    appState,
		notifier: notifier,
		events:   eventManager,
		log:      log.With().Str("component", "alerting").Logger(),
	}
}

// Name implements simulation.Observer
func (e *Evaluator) Name() string { return "alert_evaluator" }

// OnTick implements simulation.Observer
func (e *Evaluator) OnTick(_ context.Context, _ simulation.Tick) error {
	e.Evaluate()
	return nil
}

type firing struct {
	alert    domain.Alert
	observed float64
}

// Evaluate marks breached alerts as triggered and notifies once per alert.
// It returns the alerts that fired on this pass.
func (e *Evaluator) Evaluate() []domain.Alert {
	var fired []firing

	e.state.Update(func(d *state.Data) {
		for i := range d.Alerts {
			a := &d.Alerts[i]
			if !a.Active || a.Triggered {
				continue
			}
			idx := d.FindWatchlistSymbol(a.Symbol)
			if idx < 0 {
				continue
			}
			item := d.Watchlist[idx]
			if observed, ok := Breached(*a, item); ok {
				a.Triggered = true
				fired = append(fired, firing{alert: *a, observed: observed})
			}
		}
	})

	out := make([]domain.Alert, 0, len(fired))
	for _, f := range fired {
		e.announce(f)
		out = append(out, f.alert)
	}
	return out
}

func (e *Evaluator) announce(f firing) {
	a := f.alert
	e.log.Info().
		Str("symbol", a.Symbol).
		Str("condition", string(a.Condition)).
		Float64("threshold", a.Value.Float()).
		Float64("observed", f.observed).
		Msg("Alert triggered")

	e.notifier.Notify(domain.Notification{
		Kind:    domain.NotificationAlert,
		Title:   "Price alert",
		Message: format.AlertMessage(a),
		Symbol:  a.Symbol,
		AlertID: a.ID,
	})

	if e.events != nil {
		e.events.EmitTyped("alerting", &events.AlertTriggeredData{
			AlertID:   a.ID,
			Symbol:    a.Symbol,
			Condition: string(a.Condition),
			Threshold: a.Value.Float(),
			Observed:  f.observed,
		})
	}
}

// Breached tests alert a against the watchlist item. It returns the observed
// value the condition compared. Comparisons with NaN never breach.
func Breached(a domain.Alert, item domain.WatchlistItem) (float64, bool) {
	threshold := a.Value.Float()
	switch a.Condition {
	case domain.ConditionAbove:
		price := item.Price.Float()
		return price, price > threshold
	case domain.ConditionBelow:
		price := item.Price.Float()
		return price, price < threshold
	case domain.ConditionChange:
		move := math.Abs(item.ChangePercent.Float())
		return item.ChangePercent.Float(), move > threshold
	}
	return 0, false
}
