// Package main is the entry point for the Frontier portfolio simulation
// service. It wires the configuration, databases, market data client, and
// simulation engine together, exposes them over HTTP, and runs the nightly
// price sync and backup jobs.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/frontier/internal/clients/marketdata"
	"github.com/aristath/frontier/internal/config"
	"github.com/aristath/frontier/internal/database"
	"github.com/aristath/frontier/internal/modules/calculations"
	"github.com/aristath/frontier/internal/modules/simulation"
	simulationhandlers "github.com/aristath/frontier/internal/modules/simulation/handlers"
	"github.com/aristath/frontier/internal/modules/universe"
	universehandlers "github.com/aristath/frontier/internal/modules/universe/handlers"
	"github.com/aristath/frontier/internal/reliability"
	"github.com/aristath/frontier/internal/scheduler"
	"github.com/aristath/frontier/internal/server"
	"github.com/aristath/frontier/pkg/logger"
)

const (
	priceSyncSchedule  = "30 2 * * *"
	backupSchedule     = "0 4 * * *"
	cachePurgeSchedule = "@hourly"
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

	log.Info().Msg("Starting Frontier")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatal().Err(err).Str("data_dir", cfg.DataDir).Msg("Failed to create data directory")
	}

	historyDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "history.db"),
		Name:    "history",
		Profile: database.ProfileStandard,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer historyDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Name:    "cache",
		Profile: database.ProfileCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	cache, err := calculations.NewCache(cacheDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}

	history, err := universe.NewHistoryDB(historyDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history database")
	}

	marketClient := marketdata.NewClient(cfg.MarketDataAPIKey, log)
	if cfg.MarketDataURL != "" {
		marketClient.SetBaseURL(cfg.MarketDataURL)
	}
	marketClient.SetCache(cache)

	syncService := universe.NewSyncService(history, marketClient, log)
	simulationService := simulation.NewService(log)

	srv := server.New(server.Config{
		Log:                log,
		Config:             cfg,
		HistoryDB:          historyDB,
		CacheDB:            cacheDB,
		SimulationHandlers: simulationhandlers.NewHandler(simulationService, history, log),
		UniverseHandlers:   universehandlers.NewHandler(history, syncService, cfg.Symbols, log),
	})

	sched := scheduler.New(log)

	if len(cfg.Symbols) > 0 {
		job := scheduler.NewPriceSyncJob(syncService, cfg.Symbols, log)
		if err := sched.AddJob(priceSyncSchedule, job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register price sync job")
		}
	} else {
		log.Warn().Msg("No symbols configured, price sync disabled")
	}

	if err := sched.AddJob(cachePurgeSchedule, scheduler.NewCachePurgeJob(cache)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache purge job")
	}

	if cfg.Backup.Enabled() {
		s3Client, err := reliability.NewS3Client(reliability.S3Config{
			Bucket:          cfg.Backup.Bucket,
			Endpoint:        cfg.Backup.Endpoint,
			Region:          cfg.Backup.Region,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize object store client")
		}

		backupService := reliability.NewBackupService(map[string]*database.DB{
			"history": historyDB,
		}, log)
		cloudBackup := reliability.NewCloudBackupService(s3Client, backupService, cfg.DataDir, log)

		job := scheduler.NewCloudBackupJob(cloudBackup, cfg.Backup.RetentionDays)
		if err := sched.AddJob(backupSchedule, job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	} else {
		log.Info().Msg("Cloud backup not configured, skipping")
	}

	sched.Start()
	defer sched.Stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Frontier stopped")
}
