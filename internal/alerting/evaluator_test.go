package alerting

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/notify"
	"github.com/aristath/stoxy/internal/simulation"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	got []domain.Notification
}

func (r *recorder) Notify(n domain.Notification) domain.Notification {
	r.got = append(r.got, n)
	return n
}

func newState(alerts []domain.Alert, watchlist []domain.WatchlistItem) *state.AppState {
	s := state.New(1)
	s.Update(func(d *state.Data) {
		d.Alerts = alerts
		d.Watchlist = watchlist
	})
	return s
}

func TestAAPLAbove180FiresExactlyOnce(t *testing.T) {
	appState := newState(
		[]domain.Alert{{ID: domain.Int64Ptr(1), Symbol: "AAPL", Condition: domain.ConditionAbove, Value: 180, Active: true}},
		[]domain.WatchlistItem{{Symbol: "AAPL", Price: 181}},
	)
	rec := &recorder{}
	evaluator := NewEvaluator(appState, rec, nil, zerolog.Nop())

	fired := evaluator.Evaluate()
	require.Len(t, fired, 1)
	assert.True(t, appState.Alerts()[0].Triggered)

	// a later tick still above the threshold does not notify again
	appState.Update(func(d *state.Data) { d.Watchlist[0].Price = 185 })
	assert.Empty(t, evaluator.Evaluate())

	require.Len(t, rec.got, 1)
	assert.Equal(t, "AAPL rose above $180.00", rec.got[0].Message)
	assert.Equal(t, domain.NotificationAlert, rec.got[0].Kind)
	assert.Equal(t, int64(1), *rec.got[0].AlertID)
}

func TestTriggeredNeverResets(t *testing.T) {
	appState := newState(
		[]domain.Alert{{ID: domain.Int64Ptr(2), Symbol: "BTC", Condition: domain.ConditionBelow, Value: 40000, Active: true}},
		[]domain.WatchlistItem{{Symbol: "BTC", Price: 39000}},
	)
	ticker := simulation.NewTicker(appState, zerolog.Nop()).WithRandom(rand.New(rand.NewPCG(7, 9)).Float64)
	rec := &recorder{}
	ticker.Register(NewEvaluator(appState, rec, nil, zerolog.Nop()))

	for i := 0; i < 100; i++ {
		_, err := ticker.Tick(context.Background())
		require.NoError(t, err)
		assert.True(t, appState.Alerts()[0].Triggered, "tick %d", i)
	}
	assert.Len(t, rec.got, 1)
}

func TestBreached(t *testing.T) {
	tests := []struct {
		name  string
		alert domain.Alert
		item  domain.WatchlistItem
		want  bool
	}{
		{"above breached", domain.Alert{Condition: domain.ConditionAbove, Value: 180}, domain.WatchlistItem{Price: 181}, true},
		{"above at threshold", domain.Alert{Condition: domain.ConditionAbove, Value: 180}, domain.WatchlistItem{Price: 180}, false},
		{"below breached", domain.Alert{Condition: domain.ConditionBelow, Value: 40000}, domain.WatchlistItem{Price: 39999}, true},
		{"below not breached", domain.Alert{Condition: domain.ConditionBelow, Value: 40000}, domain.WatchlistItem{Price: 43567}, false},
		{"change negative move", domain.Alert{Condition: domain.ConditionChange, Value: 5}, domain.WatchlistItem{ChangePercent: -5.5}, true},
		{"change small move", domain.Alert{Condition: domain.ConditionChange, Value: 5}, domain.WatchlistItem{ChangePercent: 4.9}, false},
		{"nan price", domain.Alert{Condition: domain.ConditionAbove, Value: 180}, domain.WatchlistItem{Price: domain.NaN()}, false},
		{"unknown condition", domain.Alert{Condition: "sideways", Value: 1}, domain.WatchlistItem{Price: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := Breached(tt.alert, tt.item)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSkipsInactiveAndUnwatchedAlerts(t *testing.T) {
	appState := newState(
		[]domain.Alert{
			{ID: domain.Int64Ptr(1), Symbol: "AAPL", Condition: domain.ConditionAbove, Value: 100, Active: false},
			{ID: domain.Int64Ptr(2), Symbol: "NVDA", Condition: domain.ConditionAbove, Value: 100, Active: true},
		},
		[]domain.WatchlistItem{{Symbol: "AAPL", Price: 200}},
	)
	rec := &recorder{}

	assert.Empty(t, NewEvaluator(appState, rec, nil, zerolog.Nop()).Evaluate())
	assert.Empty(t, rec.got)
	for _, a := range appState.Alerts() {
		assert.False(t, a.Triggered)
	}
}

func TestEmitsAlertTriggeredAndStoresNotification(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	manager := events.NewManager(bus, zerolog.Nop())

	var got []*events.Event
	bus.Subscribe(func(e *events.Event) { got = append(got, e) }, events.AlertTriggered)

	appState := newState(
		[]domain.Alert{{ID: domain.Int64Ptr(3), Symbol: "TSLA", Condition: domain.ConditionChange, Value: 5, Active: true}},
		[]domain.WatchlistItem{{Symbol: "TSLA", ChangePercent: 6.25}},
	)
	center := notify.NewCenter(appState, manager, zerolog.Nop())

	NewEvaluator(appState, center, manager, zerolog.Nop()).Evaluate()

	require.Len(t, got, 1)
	var data events.AlertTriggeredData
	require.NoError(t, got[0].Decode(&data))
	assert.Equal(t, "TSLA", data.Symbol)
	assert.Equal(t, "change", data.Condition)
	assert.InDelta(t, 6.25, data.Observed, 1e-9)

	notes := appState.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "TSLA moved more than 5.00%", notes[0].Message)
}
