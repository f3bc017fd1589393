package dashboard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/stoxy/internal/events"
)

const (
	writeWait         = 10 * time.Second
	heartbeatInterval = 30 * time.Second
	eventBufferSize   = 100
)

// EventsStreamHandler pushes bus events to websocket clients.
// GET /ws/events?types=PRICES_TICKED,ALERT_TRIGGERED limits the stream.
type EventsStreamHandler struct {
	bus            *events.Bus
	originPatterns []string
	log            zerolog.Logger
}

// NewEventsStreamHandler creates the websocket event stream handler
func NewEventsStreamHandler(bus *events.Bus, originPatterns []string, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus:            bus,
		originPatterns: originPatterns,
		log:            log.With().Str("component", "events_ws").Logger(),
	}
}

type streamMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// ServeHTTP upgrades the request and streams events until the client leaves
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	var types []events.EventType
	if filter := r.URL.Query().Get("types"); filter != "" {
		for _, t := range strings.Split(filter, ",") {
			types = append(types, events.EventType(strings.TrimSpace(t)))
		}
	}

	// Handlers run on the publisher's goroutine, so never block there
	eventChan := make(chan *events.Event, eventBufferSize)
	unsubscribe := h.bus.Subscribe(func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().Str("event_type", string(event.Type)).Msg("Event channel full, dropping event")
		}
	}, types...)
	defer unsubscribe()

	// We never expect client messages; CloseRead handles control frames
	// and cancels ctx when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	h.log.Info().Int("types", len(types)).Msg("Client connected to event stream")
	if err := h.write(ctx, conn, streamMessage{Type: "connected", Message: "Connected to event stream"}); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-eventChan:
			if err := h.write(ctx, conn, event); err != nil {
				h.log.Debug().Err(err).Msg("Failed to write event")
				return
			}
		case <-heartbeat.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				h.log.Debug().Err(err).Msg("Heartbeat failed")
				return
			}
		}
	}
}

func (h *EventsStreamHandler) write(ctx context.Context, conn *websocket.Conn, v interface{}) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(writeCtx, conn, v)
}
