// Package notify records user-facing notifications.
package notify

import (
	"time"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/state"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Center keeps notifications in the app state and publishes them on the bus
type Center struct {
	state  *state.AppState
	events *events.Manager
	log    zerolog.Logger
	now    func() time.Time
}

// NewCenter creates a notification center. eventManager may be nil.
func NewCenter(appState *state.AppState, eventManager *events.Manager, log zerolog.Logger) *Center {
	return &Center{
		state:  appState,
		events: eventManager,
		log:    log.With().Str("component", "notify").Logger(),
		now:    time.Now,
	}
}

// Notify stores n, filling in its id and timestamp, and returns it
func (c *Center) Notify(n domain.Notification) domain.Notification {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = c.now()
	}

	c.state.AddNotification(n)

	c.log.Info().
		Str("kind", string(n.Kind)).
		Str("title", n.Title).
		Msg(n.Message)

	if c.events != nil {
		c.events.EmitTyped("notify", &events.NotificationData{
			ID:      n.ID,
			Kind:    string(n.Kind),
			Title:   n.Title,
			Message: n.Message,
		})
	}
	return n
}

// Error surfaces a blocking failure message
func (c *Center) Error(title, message string) {
	c.Notify(domain.Notification{Kind: domain.NotificationError, Title: title, Message: message})
}

// Info surfaces a confirmation
func (c *Center) Info(kind domain.NotificationKind, title, message string) {
	c.Notify(domain.Notification{Kind: kind, Title: title, Message: message})
}
