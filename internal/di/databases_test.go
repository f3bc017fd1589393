package di

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stoxy/internal/database"
)

func TestInitializeDatabases(t *testing.T) {
	cfg := testConfig(t)

	container, err := InitializeDatabases(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.LocalDB.Close() })

	assert.Equal(t, "localstore", container.LocalDB.Name())
	_, err = os.Stat(cfg.SQLitePath("localstore"))
	assert.NoError(t, err)
}

func TestInitializeAPIDatabase_SQLite(t *testing.T) {
	cfg := testConfig(t)

	db, err := InitializeAPIDatabase(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, database.DriverSQLite, db.Driver())
	_, err = os.Stat(cfg.SQLitePath("stoxy"))
	assert.NoError(t, err)
}

func TestInitializeAPIDatabase_UnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseDriver = "oracle"

	_, err := InitializeAPIDatabase(cfg, zerolog.Nop())
	assert.Error(t, err)
}
