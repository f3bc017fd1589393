package events

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var calls []string
	bus.Subscribe(func(e *Event) { calls = append(calls, "first") })
	bus.Subscribe(func(e *Event) { calls = append(calls, "second") })

	event := bus.Emit(PricesTicked, "simulation", nil)

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, PricesTicked, event.Type)
	assert.Equal(t, "simulation", event.Module)
}

func TestBus_TypeFilter(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var got []EventType
	bus.Subscribe(func(e *Event) { got = append(got, e.Type) }, AlertTriggered)

	bus.Emit(PricesTicked, "simulation", nil)
	bus.Emit(AlertTriggered, "alerting", nil)

	assert.Equal(t, []EventType{AlertTriggered}, got)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	count := 0
	unsubscribe := bus.Subscribe(func(e *Event) { count++ })
	require.Equal(t, 1, bus.SubscriberCount())

	bus.Emit(StateFlushed, "autosave", nil)
	unsubscribe()
	unsubscribe()
	bus.Emit(StateFlushed, "autosave", nil)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.SubscriberCount())
}

func TestBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	reached := false
	bus.Subscribe(func(e *Event) { panic("broken subscriber") })
	bus.Subscribe(func(e *Event) { reached = true })

	assert.NotPanics(t, func() { bus.Emit(ErrorOccurred, "test", nil) })
	assert.True(t, reached)
}

func TestManager_EmitTyped(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	manager := NewManager(bus, zerolog.Nop())

	var received *Event
	bus.Subscribe(func(e *Event) { received = e })

	manager.EmitTyped("alerting", &AlertTriggeredData{
		Symbol:    "AAPL",
		Condition: "above",
		Threshold: 180,
		Observed:  181,
	})

	require.NotNil(t, received)
	assert.Equal(t, AlertTriggered, received.Type)
	assert.Equal(t, "AAPL", received.Data["symbol"])

	var decoded AlertTriggeredData
	require.NoError(t, received.Decode(&decoded))
	assert.Equal(t, 181.0, decoded.Observed)
}

func TestManager_EmitError(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	manager := NewManager(bus, zerolog.Nop())

	var received *Event
	bus.Subscribe(func(e *Event) { received = e }, ErrorOccurred)

	manager.EmitError("autosave", errors.New("disk full"), map[string]interface{}{"key": "holdings"})

	require.NotNil(t, received)
	assert.Equal(t, "disk full", received.Data["error"])
	assert.Equal(t, "autosave", received.Module)
}
