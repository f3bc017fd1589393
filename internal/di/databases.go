package di

import (
	"fmt"

	"github.com/aristath/stoxy/internal/config"
	"github.com/aristath/stoxy/internal/database"
	"github.com/rs/zerolog"
)

// InitializeAPIDatabase opens the API database for the configured driver
// and applies its schema
func InitializeAPIDatabase(cfg *config.Config, log zerolog.Logger) (*database.DB, error) {
	dbCfg := database.Config{
		Driver:  database.Driver(cfg.DatabaseDriver),
		Profile: database.ProfileStandard,
		Name:    "stoxy",
	}
	if dbCfg.Driver == database.DriverPostgres {
		dbCfg.DSN = cfg.DatabaseURL
	} else {
		dbCfg.Path = cfg.SQLitePath("stoxy")
	}

	db, err := database.New(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize api database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
	}

	log.Info().Str("driver", string(db.Driver())).Msg("API database initialized")
	return db, nil
}

// InitializeDatabases opens the client's offline store
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	localDB, err := database.New(database.Config{
		Driver:  database.DriverSQLite,
		Path:    cfg.SQLitePath("localstore"),
		Profile: database.ProfileCache,
		Name:    "localstore",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize localstore database: %w", err)
	}

	if err := localDB.Migrate(); err != nil {
		localDB.Close()
		return nil, fmt.Errorf("failed to apply schema to %s: %w", localDB.Name(), err)
	}

	log.Info().Str("path", localDB.Path()).Msg("Local store initialized")
	return &Container{LocalDB: localDB}, nil
}
