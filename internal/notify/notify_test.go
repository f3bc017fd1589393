package notify

import (
	"testing"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenter_RecordsAndPublishes(t *testing.T) {
	appState := state.New(1)
	bus := events.NewBus(zerolog.Nop())

	var published []*events.Event
	bus.Subscribe(func(e *events.Event) { published = append(published, e) }, events.NotificationCreated)

	center := NewCenter(appState, events.NewManager(bus, zerolog.Nop()), zerolog.Nop())
	center.Error("Save failed", "The backend rejected the position")
	n := center.Notify(domain.Notification{Kind: domain.NotificationAlert, Title: "Price alert", Symbol: "AAPL"})

	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	stored := appState.Notifications()
	require.Len(t, stored, 2)
	assert.Equal(t, domain.NotificationAlert, stored[0].Kind)
	assert.Equal(t, domain.NotificationError, stored[1].Kind)

	require.Len(t, published, 2)
	assert.Equal(t, "error", published[0].Data["kind"])
}
