package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/database"
)

// MaintenanceJob checks integrity and checkpoints the WAL of SQLite databases
type MaintenanceJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewMaintenanceJob creates the daily maintenance job
func NewMaintenanceJob(databases map[string]*database.DB, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance job. An integrity failure aborts; checkpoint
// failures are only logged.
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting maintenance")
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for name, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Str("database", name).Err(err).Msg("Integrity check failed")
			return fmt.Errorf("maintenance of %s: %w", name, err)
		}

		if db.Driver() != database.DriverSQLite {
			continue
		}
		if _, err := db.Conn().ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			j.log.Warn().Str("database", name).Err(err).Msg("WAL checkpoint failed")
		}
		if _, err := db.Conn().ExecContext(ctx, "PRAGMA incremental_vacuum"); err != nil {
			j.log.Warn().Str("database", name).Err(err).Msg("Incremental vacuum failed")
		}
	}

	j.log.Info().Dur("duration_ms", time.Since(start)).Msg("Maintenance completed")
	return nil
}
