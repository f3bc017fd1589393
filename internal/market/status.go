// Package market tracks the simulated exchange open/closed status.
package market

import (
	"sync"
	"time"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
)

// JobName is the scheduler name of the status check
const JobName = "market_status"

// Trading hours in local time, [OpenHour, CloseHour)
const (
	OpenHour  = 9
	CloseHour = 17
)

// Status labels
const (
	LabelOpen   = "Markets open"
	LabelClosed = "Markets closed"
)

// IsOpen reports whether t falls inside trading hours
func IsOpen(t time.Time) bool {
	h := t.Hour()
	return h >= OpenHour && h < CloseHour
}

// StatusJob refreshes the market status in the app state
type StatusJob struct {
	state  *state.AppState
	events *events.Manager
	log    zerolog.Logger
	now    func() time.Time

	mu      sync.Mutex
	checked bool
	open    bool
}

// NewStatusJob creates the status job. eventManager may be nil.
func NewStatusJob(appState *state.AppState, eventManager *events.Manager, log zerolog.Logger) *StatusJob {
	return &StatusJob{
		state:  appState,
		events: eventManager,
		log:    log.With().Str("job", JobName).Logger(),
		now:    time.Now,
	}
}

// Name implements scheduler.Job
func (j *StatusJob) Name() string { return JobName }

// Run implements scheduler.Job
func (j *StatusJob) Run() error {
	j.Check()
	return nil
}

// Check updates the status and publishes MarketStatusChanged on transitions.
// The first check always publishes.
func (j *StatusJob) Check() domain.MarketStatus {
	now := j.now()
	status := domain.MarketStatus{Open: IsOpen(now), Label: LabelClosed, CheckedAt: now}
	if status.Open {
		status.Label = LabelOpen
	}

	j.state.Update(func(d *state.Data) { d.Market = status })

	j.mu.Lock()
	changed := !j.checked || j.open != status.Open
	j.checked = true
	j.open = status.Open
	j.mu.Unlock()

	if changed {
		j.log.Info().Bool("open", status.Open).Msg(status.Label)
		if j.events != nil {
			j.events.EmitTyped("market", &events.MarketStatusChangedData{Open: status.Open, Label: status.Label})
		}
	}
	return status
}
