// Package autosave periodically flushes the app state to the local store.
package autosave

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/localstore"
	"github.com/aristath/stoxy/internal/state"
	"github.com/rs/zerolog"
)

// JobName is the scheduler name of the periodic flush
const JobName = "autosave"

// Flush reasons
const (
	ReasonInterval = "interval"
	ReasonUnload   = "unload"
	ReasonManual   = "manual"
)

// Store is the write side of the local store used by the daemon
type Store interface {
	SaveAll(c localstore.Collections) error
}

// Stats counts flush attempts since start
type Stats struct {
	Flushes  uint64 `json:"flushes"`
	Failures uint64 `json:"failures"`
	LastErr  string `json:"last_error,omitempty"`
}

// Daemon writes portfolio, holdings, watchlist and alerts as whole snapshots.
// Writes are last-writer-wins; a failed flush is only retried by the next one.
type Daemon struct {
	state  *state.AppState
	store  Store
	events *events.Manager
	log    zerolog.Logger

	flushes  atomic.Uint64
	failures atomic.Uint64

	mu      sync.Mutex
	lastErr error
	closed  bool
}

// New creates a daemon. eventManager may be nil.
func New(appState *state.AppState, store Store, eventManager *events.Manager, log zerolog.Logger) *Daemon {
	return &Daemon{
		state:  appState,
		store:  store,
		events: eventManager,
		log:    log.With().Str("component", "autosave").Logger(),
	}
}

// Name implements scheduler.Job
func (d *Daemon) Name() string { return JobName }

// Run implements scheduler.Job. Failures are logged and counted, never fatal.
func (d *Daemon) Run() error {
	_ = d.Flush(ReasonInterval)
	return nil
}

// Flush snapshots the app state and writes it to the store
func (d *Daemon) Flush(reason string) error {
	snap := d.state.Snapshot()
	c := localstore.Collections{
		Portfolio: snap.Portfolio,
		Holdings:  snap.Holdings,
		Watchlist: snap.Watchlist,
		Alerts:    snap.Alerts,
	}

	d.flushes.Add(1)
	if err := d.store.SaveAll(c); err != nil {
		d.failures.Add(1)
		d.mu.Lock()
		d.lastErr = err
		d.mu.Unlock()

		d.log.Error().Err(err).Str("reason", reason).Msg("Failed to persist state")
		if d.events != nil {
			d.events.Emit(events.FlushFailed, "autosave", map[string]interface{}{"reason": reason, "error": err.Error()})
		}
		return fmt.Errorf("autosave %s: %w", reason, err)
	}

	d.log.Debug().
		Str("reason", reason).
		Int("holdings", len(c.Holdings)).
		Int("alerts", len(c.Alerts)).
		Msg("State persisted")

	if d.events != nil {
		d.events.EmitTyped("autosave", &events.StateFlushedData{
			Reason:   reason,
			Holdings: len(c.Holdings),
			Alerts:   len(c.Alerts),
		})
	}
	return nil
}

// Close performs the final flush on shutdown. Later calls are no-ops.
func (d *Daemon) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	return d.Flush(ReasonUnload)
}

// Stats returns the flush counters
func (d *Daemon) Stats() Stats {
	s := Stats{
		Flushes:  d.flushes.Load(),
		Failures: d.failures.Load(),
	}
	d.mu.Lock()
	if d.lastErr != nil {
		s.LastErr = d.lastErr.Error()
	}
	d.mu.Unlock()
	return s
}
