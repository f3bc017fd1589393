// Package main runs the Stoxy REST API.
//
// Usage:
//
//	stoxy-api              serve the API on API_PORT
//	stoxy-api seed <csv>   replace the seeded users' holdings with the
//	                       positions consolidated from a transaction export
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stoxy/internal/config"
	"github.com/aristath/stoxy/internal/database"
	"github.com/aristath/stoxy/internal/di"
	"github.com/aristath/stoxy/internal/modules/holdings"
	"github.com/aristath/stoxy/internal/modules/portfolio"
	"github.com/aristath/stoxy/internal/seed"
	"github.com/aristath/stoxy/internal/server"
	"github.com/aristath/stoxy/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	db, err := di.InitializeAPIDatabase(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if len(os.Args) > 2 && os.Args[1] == "seed" {
		if err := runSeed(db, os.Args[2], log); err != nil {
			log.Error().Err(err).Msg("Seeding failed")
			db.Close()
			os.Exit(1)
		}
		return
	}

	serve(cfg, db, log)
}

func serve(cfg *config.Config, db *database.DB, log zerolog.Logger) {
	log.Info().Msg("Starting Stoxy API")

	srv := server.New(server.Config{
		Log:           log,
		DB:            db,
		Port:          cfg.APIPort,
		DevMode:       cfg.DevMode,
		DefaultUserID: cfg.UserID,
		DataDir:       cfg.DataDir,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server stopped")
}

func runSeed(db *database.DB, path string, log zerolog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	txs, err := seed.ParseCSV(f)
	if err != nil {
		return err
	}

	seeder := seed.NewSeeder(holdings.NewRepository(db, log), portfolio.NewRepository(db, log), nil, log)
	report, err := seeder.Run(context.Background(), txs)
	if err != nil {
		return err
	}

	for userID, totals := range report.Totals {
		log.Info().
			Int64("user_id", userID).
			Str("total", totals.Total.StringFixed(2)).
			Str("stocks", totals.Stocks.StringFixed(2)).
			Str("crypto", totals.Crypto.StringFixed(2)).
			Msg("Portfolio totals")
	}
	log.Info().
		Int("transactions", len(txs)).
		Int64("removed", report.Removed).
		Int("inserted", report.Inserted).
		Int("closed", report.Skipped).
		Msg("Seeding completed")
	return nil
}
