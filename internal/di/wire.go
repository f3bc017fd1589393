package di

import (
	"context"
	"fmt"

	"github.com/aristath/stoxy/internal/config"
	"github.com/aristath/stoxy/internal/reconciler"
	"github.com/rs/zerolog"
)

// Wire initializes all client dependencies and returns a configured container.
// Order of operations:
// 1. Open the local database
// 2. Build state, gateway and services
// 3. Register jobs
func Wire(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := InitializeServices(ctx, container, cfg, log); err != nil {
		container.LocalDB.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := RegisterJobs(container, cfg, log); err != nil {
		container.LocalDB.Close()
		return nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")
	return container, nil
}

// Start runs the initial load, then starts the scheduler. The load always
// completes: an unreachable backend just means local or default data.
func (c *Container) Start(ctx context.Context) reconciler.Outcome {
	outcome := c.Reconciler.Run(ctx)
	c.MarketStatus.Check()
	c.Scheduler.Start()
	return outcome
}

// Stop stops the jobs and performs the unload flush
func (c *Container) Stop() error {
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	return c.Close()
}
