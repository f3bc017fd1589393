package di

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stoxy/internal/autosave"
	"github.com/aristath/stoxy/internal/config"
	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/market"
	"github.com/aristath/stoxy/internal/reconciler"
	"github.com/aristath/stoxy/internal/simulation"
	"github.com/aristath/stoxy/internal/state"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DataDir:              t.TempDir(),
		DatabaseDriver:       config.DriverSQLite,
		APIBaseURL:           "http://127.0.0.1:1", // nothing listens here
		APITimeout:           200 * time.Millisecond,
		UserID:               2,
		AutosaveInterval:     30 * time.Second,
		PriceTickInterval:    5 * time.Second,
		MarketStatusInterval: time.Minute,
		LocalStoreCodec:      config.CodecMsgpack,
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	assert.NotNil(t, container.Gateway)
	assert.NotNil(t, container.Pipeline)
	assert.NotNil(t, container.Transfer)
	assert.Nil(t, container.Backup)
	assert.Equal(t, int64(2), container.State.UserID())

	assert.ElementsMatch(t, []string{
		autosave.JobName,
		simulation.JobName,
		market.JobName,
		container.Cleanup.Name(),
		container.Maintenance.Name(),
	}, container.Scheduler.Jobs())

	// alerts are evaluated before the tick is published
	assert.Equal(t, []string{container.Alerts.Name(), "event_publisher"}, container.Ticker.Observers())
}

func TestWire_UnknownCodec(t *testing.T) {
	cfg := testConfig(t)
	cfg.LocalStoreCodec = "xml"

	_, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestStart_OfflineUsesLocalSnapshot(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, container.Store.SaveHoldings([]domain.Holding{{Symbol: "AAPL", Name: "Apple", Quantity: 1, Value: 180}}))

	outcome := container.Start(context.Background())
	assert.Equal(t, reconciler.SourceLocal, outcome.Source(reconciler.ResourceHoldings))

	snap := container.State.Snapshot()
	require.Len(t, snap.Holdings, 1)
	assert.Equal(t, "AAPL", snap.Holdings[0].Symbol)

	container.State.Update(func(d *state.Data) {
		d.Holdings = append(d.Holdings, domain.Holding{Symbol: "BTC", Name: "Bitcoin", Quantity: 1, Value: 40000})
	})
	require.NoError(t, container.Stop())

	// Stop flushed the state on the way out
	reopened, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	holdings, err := reopened.Store.LoadHoldings()
	require.NoError(t, err)
	assert.Len(t, holdings, 2)
}

func TestClose_FlushesOnce(t *testing.T) {
	container, err := Wire(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, container.Autosave.Close())
	require.NoError(t, container.Autosave.Close())
	assert.Equal(t, uint64(1), container.Autosave.Stats().Flushes)

	holdings, err := container.Store.LoadHoldings()
	require.NoError(t, err)
	assert.Equal(t, container.State.Snapshot().Holdings, holdings)
	require.NoError(t, container.LocalDB.Close())
}
