package localstore

import (
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/aristath/stoxy/internal/domain"
	"github.com/aristath/stoxy/internal/state"
	testingpkg "github.com/aristath/stoxy/internal/testing"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE snapshots (
    user_id INTEGER NOT NULL,
    key TEXT NOT NULL,
    codec TEXT NOT NULL,
    data BLOB NOT NULL,
    updated_at TEXT NOT NULL,
    PRIMARY KEY (user_id, key)
);
CREATE TABLE search_cache (
    user_id INTEGER NOT NULL,
    query TEXT NOT NULL,
    data TEXT NOT NULL,
    expires_at INTEGER NOT NULL,
    PRIMARY KEY (user_id, query)
);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStore_LoadMissingKey(t *testing.T) {
	store := New(setupTestDB(t), 1, nil, zerolog.Nop())

	_, err := store.LoadHoldings()
	assert.ErrorIs(t, err, ErrNotFound)

	_, ok, err := store.LastSync()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveAndLoadHoldings(t *testing.T) {
	store := New(setupTestDB(t), 1, nil, zerolog.Nop())

	holdings := []domain.Holding{
		{ID: domain.Int64Ptr(7), Symbol: "NVDA", Name: "NVDA Holdings", Quantity: 3, Value: 1485.66, Type: domain.AssetStock},
	}
	require.NoError(t, store.SaveHoldings(holdings))

	got, err := store.LoadHoldings()
	require.NoError(t, err)
	assert.Equal(t, holdings, got)

	_, ok, err := store.LastSync()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_NaNSurvivesRoundTrip(t *testing.T) {
	for _, codec := range []Codec{JSONCodec{}, MsgpackCodec{}} {
		t.Run(codec.Name(), func(t *testing.T) {
			store := New(setupTestDB(t), 1, codec, zerolog.Nop())

			require.NoError(t, store.SavePortfolio(domain.Portfolio{TotalValue: domain.NaN(), Stocks: 10}))

			got, err := store.LoadPortfolio()
			require.NoError(t, err)
			assert.True(t, math.IsNaN(got.TotalValue.Float()))
			assert.Equal(t, domain.Number(10), got.Stocks)
		})
	}
}

func TestStore_ReadsRowsWrittenWithAnotherCodec(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, New(db, 1, MsgpackCodec{}, zerolog.Nop()).SaveAlerts(state.DefaultAlerts()))

	got, err := New(db, 1, JSONCodec{}, zerolog.Nop()).LoadAlerts()
	require.NoError(t, err)
	assert.Equal(t, state.DefaultAlerts(), got)
}

func TestStore_SaveAllIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	store := New(db, 1, nil, zerolog.Nop())

	c := Collections{
		Portfolio: state.DefaultPortfolio(),
		Holdings:  state.DefaultHoldings(),
		Watchlist: state.DefaultWatchlist(),
		Alerts:    state.DefaultAlerts(),
	}

	require.NoError(t, store.SaveAll(c))
	sizeAfterFirst, err := store.SizeKB()
	require.NoError(t, err)

	require.NoError(t, store.SaveAll(c))
	sizeAfterSecond, err := store.SizeKB()
	require.NoError(t, err)

	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&rows))
	assert.Equal(t, 5, rows) // four collections + last_sync
	assert.InDelta(t, sizeAfterFirst, sizeAfterSecond, 0.01)

	holdings, err := store.LoadHoldings()
	require.NoError(t, err)
	assert.Equal(t, c.Holdings, holdings)
}

func TestStore_UsersAreIsolated(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, New(db, 1, nil, zerolog.Nop()).SaveHoldings(state.DefaultHoldings()))

	_, err := New(db, 2, nil, zerolog.Nop()).LoadHoldings()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Clear(t *testing.T) {
	store := New(setupTestDB(t), 1, nil, zerolog.Nop())

	require.NoError(t, store.SaveAll(Collections{
		Portfolio: state.DefaultPortfolio(),
		Holdings:  state.DefaultHoldings(),
		Alerts:    state.DefaultAlerts(),
	}))

	require.NoError(t, store.ClearPortfolio())
	_, err := store.LoadPortfolio()
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.LoadHoldings()
	assert.ErrorIs(t, err, ErrNotFound)

	has, err := store.Has(KeyAlerts)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, store.ClearAlerts())
	has, err = store.Has(KeyAlerts)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.ClearAll())
	size, err := store.SizeKB()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestStore_SettingsAndProfileDefaults(t *testing.T) {
	store := New(setupTestDB(t), 1, nil, zerolog.Nop())

	settings, err := store.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, state.DefaultSettings(), settings)

	profile, err := store.LoadUserProfile()
	require.NoError(t, err)
	assert.Equal(t, "Francisco", profile.Name)

	settings.Theme = "light"
	require.NoError(t, store.SaveSettings(settings))
	got, err := store.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "light", got.Theme)
}

func TestStore_RejectsUnknownKey(t *testing.T) {
	store := New(setupTestDB(t), 1, nil, zerolog.Nop())

	assert.Error(t, store.Save(Key("other_app_key"), 1))
}

func TestStore_OnMigratedDatabase(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t, "localstore")
	defer cleanup()

	store := New(db.Conn(), 1, nil, zerolog.Nop())
	require.NoError(t, store.SaveCurrentPortfolio(3))

	id, err := store.LoadCurrentPortfolio()
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestSearchCache(t *testing.T) {
	cache := NewSearchCache(setupTestDB(t), 1)
	now := time.Now()
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Store(" AAPL ", []map[string]string{{"symbol": "AAPL"}}, time.Minute))

	fresh, err := cache.GetIfFresh("aapl")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"symbol":"AAPL"}]`, string(fresh))

	cache.now = func() time.Time { return now.Add(2 * time.Minute) }
	fresh, err = cache.GetIfFresh("aapl")
	require.NoError(t, err)
	assert.Nil(t, fresh)

	stale, err := cache.Get("aapl")
	require.NoError(t, err)
	assert.NotNil(t, stale)

	require.NoError(t, NewCleanupJob(cache, zerolog.Nop()).Run())
	stale, err = cache.Get("aapl")
	require.NoError(t, err)
	assert.Nil(t, stale)
}
