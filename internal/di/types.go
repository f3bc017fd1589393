// Package di wires the dashboard client: databases, the API gateway, the
// app state and the components that read and write it.
package di

import (
	"github.com/aristath/stoxy/internal/alerting"
	"github.com/aristath/stoxy/internal/autosave"
	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/localstore"
	"github.com/aristath/stoxy/internal/market"
	"github.com/aristath/stoxy/internal/mutation"
	"github.com/aristath/stoxy/internal/notify"
	"github.com/aristath/stoxy/internal/reconciler"
	"github.com/aristath/stoxy/internal/reliability"
	"github.com/aristath/stoxy/internal/scheduler"
	"github.com/aristath/stoxy/internal/simulation"
	"github.com/aristath/stoxy/internal/state"
	"github.com/aristath/stoxy/internal/transfer"
)

// Container holds every client dependency. It is created by Wire.
type Container struct {
	// Databases
	LocalDB *database.DB

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// State and persistence
	State       *state.AppState
	Store       *localstore.Store
	SearchCache *localstore.SearchCache

	// Remote
	Gateway *stoxyapi.Client

	// Services
	Notifications *notify.Center
	Reconciler    *reconciler.Reconciler
	Pipeline      *mutation.Pipeline
	Transfer      *transfer.Service
	Backup        *reliability.BackupService // nil unless backups are enabled

	// Jobs
	Scheduler    *scheduler.Scheduler
	Autosave     *autosave.Daemon
	Ticker       *simulation.Ticker
	Alerts       *alerting.Evaluator
	MarketStatus *market.StatusJob
	Cleanup      *localstore.CleanupJob
	Maintenance  *reliability.MaintenanceJob
	BackupJob    *reliability.BackupJob // nil unless backups are enabled
}

// Close performs the final state flush and closes the local database.
// The scheduler must already be stopped.
func (c *Container) Close() error {
	var flushErr error
	if c.Autosave != nil {
		flushErr = c.Autosave.Close()
	}
	if c.LocalDB != nil {
		if err := c.LocalDB.Close(); err != nil {
			return err
		}
	}
	return flushErr
}
