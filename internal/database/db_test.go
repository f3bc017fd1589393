package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTempDB(t *testing.T, name string) *DB {
	t.Helper()

	db, err := New(Config{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), name+".db"),
		Name:   name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name   string
		driver Driver
		query  string
		want   string
	}{
		{"sqlite untouched", DriverSQLite, "SELECT * FROM holdings WHERE id = ? AND user_id = ?", "SELECT * FROM holdings WHERE id = ? AND user_id = ?"},
		{"postgres numbered", DriverPostgres, "SELECT * FROM holdings WHERE id = ? AND user_id = ?", "SELECT * FROM holdings WHERE id = $1 AND user_id = $2"},
		{"quoted question mark kept", DriverPostgres, "SELECT '?' FROM alerts WHERE id = ?", "SELECT '?' FROM alerts WHERE id = $1"},
		{"no placeholders", DriverPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.driver, tt.query))
		})
	}
}

func TestSplitStatements(t *testing.T) {
	schema := `
-- header comment
CREATE TABLE a (id INTEGER);

CREATE TABLE b (id INTEGER);
`
	stmts := splitStatements(schema)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (id INTEGER)", stmts[0])
	assert.Equal(t, "CREATE TABLE b (id INTEGER)", stmts[1])
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(Config{Driver: "oracle", Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNew_PostgresRequiresDSN(t *testing.T) {
	_, err := New(Config{Driver: DriverPostgres, Name: "stoxy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DSN is required")
}

func TestMigrate_APISchema(t *testing.T) {
	db := newTempDB(t, "stoxy")
	require.NoError(t, db.Migrate())

	// Idempotent
	require.NoError(t, db.Migrate())

	for _, table := range []string{"portfolio", "holdings", "watchlist", "alerts", "portfolios"} {
		var name string
		err := db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_UnknownNameIsSkipped(t *testing.T) {
	db := newTempDB(t, "scratch")
	assert.NoError(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db := newTempDB(t, "localstore")
	require.NoError(t, db.Migrate())

	insert := func(tx *sql.Tx, key string) error {
		_, err := tx.Exec(`INSERT INTO snapshots (user_id, key, codec, data, updated_at) VALUES (1, ?, 'json', '{}', '')`, key)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n))
		return n
	}

	t.Run("commit", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error { return insert(tx, "a") })
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "b"))
			return boom
		})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})

	t.Run("rollback on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "c"))
			panic("kaboom")
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic in transaction")
		assert.Equal(t, 1, count())
	})

	t.Run("nil db", func(t *testing.T) {
		assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
	})
}

func TestHealthCheckAndStats(t *testing.T) {
	db := newTempDB(t, "stoxy")
	require.NoError(t, db.Migrate())

	require.NoError(t, db.HealthCheck(context.Background()))
	require.NoError(t, db.QuickCheck(context.Background()))

	stats := db.GetStats()
	assert.Equal(t, "sqlite", stats.Driver)
	assert.Greater(t, stats.SizeBytes+stats.WALSizeBytes, int64(0))
}
