package di

import (
	"context"
	"fmt"

	"github.com/aristath/stoxy/internal/alerting"
	"github.com/aristath/stoxy/internal/autosave"
	"github.com/aristath/stoxy/internal/clients/stoxyapi"
	"github.com/aristath/stoxy/internal/config"
	"github.com/aristath/stoxy/internal/events"
	"github.com/aristath/stoxy/internal/localstore"
	"github.com/aristath/stoxy/internal/market"
	"github.com/aristath/stoxy/internal/mutation"
	"github.com/aristath/stoxy/internal/notify"
	"github.com/aristath/stoxy/internal/reconciler"
	"github.com/aristath/stoxy/internal/reliability"
	"github.com/aristath/stoxy/internal/simulation"
	"github.com/aristath/stoxy/internal/state"
	"github.com/aristath/stoxy/internal/transfer"
	"github.com/rs/zerolog"
)

// InitializeServices builds the state and everything that works on it.
// The local database must already be open.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.LocalDB == nil {
		return fmt.Errorf("container has no local database")
	}

	codec, err := localstore.CodecByName(cfg.LocalStoreCodec)
	if err != nil {
		return err
	}

	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	container.State = state.New(cfg.UserID)
	container.Store = localstore.New(container.LocalDB.Conn(), cfg.UserID, codec, log)
	container.SearchCache = localstore.NewSearchCache(container.LocalDB.Conn(), cfg.UserID)

	container.Gateway = stoxyapi.NewClient(cfg.APIBaseURL, cfg.UserID, cfg.APITimeout, container.SearchCache, log)

	container.Notifications = notify.NewCenter(container.State, container.EventManager, log)
	container.Reconciler = reconciler.New(container.Gateway, container.Store, container.State, container.EventManager, log)
	container.Pipeline = mutation.New(container.Gateway, container.State, container.Store, container.Notifications, container.EventManager, log)
	container.Transfer = transfer.NewService(container.Store, container.Reconciler, container.EventManager, log)

	container.Autosave = autosave.New(container.State, container.Store, container.EventManager, log)
	container.Alerts = alerting.NewEvaluator(container.State, container.Notifications, container.EventManager, log)
	container.MarketStatus = market.NewStatusJob(container.State, container.EventManager, log)

	// Alerts see the prices of the tick that fired them, then subscribers hear about it
	container.Ticker = simulation.NewTicker(container.State, log)
	container.Ticker.Register(container.Alerts)
	container.Ticker.Register(simulation.NewPublisher(container.EventManager))

	if cfg.Backup != nil && cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(ctx, cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to initialize backup storage: %w", err)
		}
		container.Backup = reliability.NewBackupService(s3Client, container.Transfer, cfg.Backup.Prefix, container.EventManager, log)
	}

	log.Info().Int64("user_id", cfg.UserID).Str("api", cfg.APIBaseURL).Msg("Client services initialized")
	return nil
}
