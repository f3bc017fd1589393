package di

import (
	"fmt"

	"github.com/aristath/stoxy/internal/config"
	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/localstore"
	"github.com/aristath/stoxy/internal/reliability"
	"github.com/aristath/stoxy/internal/scheduler"
	"github.com/rs/zerolog"
)

// Schedules for the housekeeping jobs
const (
	CleanupSchedule     = "0 0 * * * *" // hourly
	MaintenanceSchedule = "0 0 3 * * *" // 03:00 daily
	DefaultBackupCron   = "0 30 2 * * *"
)

// RegisterJobs creates the scheduler and registers every recurring job.
// Nothing runs until Scheduler.Start.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	sched := scheduler.New(log)
	container.Scheduler = sched

	container.Cleanup = localstore.NewCleanupJob(container.SearchCache, log)
	container.Maintenance = reliability.NewMaintenanceJob(map[string]*database.DB{
		"localstore": container.LocalDB,
	}, log)

	if err := sched.AddInterval(cfg.AutosaveInterval, container.Autosave); err != nil {
		return err
	}
	if err := sched.AddInterval(cfg.PriceTickInterval, container.Ticker); err != nil {
		return err
	}
	if err := sched.AddInterval(cfg.MarketStatusInterval, container.MarketStatus); err != nil {
		return err
	}
	if err := sched.AddJob(CleanupSchedule, container.Cleanup); err != nil {
		return err
	}
	if err := sched.AddJob(MaintenanceSchedule, container.Maintenance); err != nil {
		return err
	}

	if container.Backup != nil {
		schedule := cfg.Backup.Schedule
		if schedule == "" {
			schedule = DefaultBackupCron
		}
		container.BackupJob = reliability.NewBackupJob(container.Backup, log)
		if err := sched.AddJob(schedule, container.BackupJob); err != nil {
			return err
		}
	}

	log.Info().Strs("jobs", sched.Jobs()).Msg("Jobs registered")
	return nil
}
