// Package main is the entry point for the adaptive banking UI service.
// It derives behavioral traits from a consented event log and serves
// personalized layout schemas, with an optional LLM composition path that
// always falls back to the deterministic rule engine.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adaptivebank/genui/internal/behavior"
	"github.com/adaptivebank/genui/internal/composer"
	"github.com/adaptivebank/genui/internal/config"
	"github.com/adaptivebank/genui/internal/database"
	"github.com/adaptivebank/genui/internal/events"
	"github.com/adaptivebank/genui/internal/profile"
	"github.com/adaptivebank/genui/internal/reliability"
	"github.com/adaptivebank/genui/internal/scheduler"
	"github.com/adaptivebank/genui/internal/server"
	"github.com/adaptivebank/genui/internal/traits"
	"github.com/adaptivebank/genui/pkg/logger"
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

	log.Info().Msg("Starting adaptive UI service")

	// Two-database layout: the append-only event log gets the ledger
	// profile (FULL sync), mutable profile state gets the standard one.
	behaviorDB, err := database.New(database.Config{
		Path:    cfg.BehaviorDBPath(),
		Profile: database.ProfileLedger,
		Name:    "behavior",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open behavior database")
	}
	defer behaviorDB.Close()

	profileDB, err := database.New(database.Config{
		Path:    cfg.ProfileDBPath(),
		Profile: database.ProfileStandard,
		Name:    "profile",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open profile database")
	}
	defer profileDB.Close()

	if err := behaviorDB.Migrate(behavior.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate behavior database")
	}
	if err := profileDB.Migrate(profile.Schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate profile database")
	}
	if err := profileDB.Migrate(traits.CacheSchema); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate trait cache schema")
	}

	eventRepo := behavior.NewRepository(behaviorDB.Conn())
	profileRepo := profile.NewRepository(profileDB.Conn())
	traitCache := traits.NewCache(profileDB.Conn())
	eventBus := events.NewBus()

	var generator composer.Generator
	if cfg.LLM.Enabled() {
		generator = composer.NewOpenAIGenerator(composer.GeneratorConfig{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		}, log)
		log.Info().Str("model", cfg.LLM.Model).Msg("LLM layout generator enabled")
	} else {
		log.Info().Msg("LLM layout generator disabled, rule engine only")
	}

	composerService := composer.New(composer.Config{
		Events:    eventRepo,
		Prefs:     profileRepo,
		Generator: generator,
		Cache:     traitCache,
		LangHint:  cfg.DefaultLangHint,
		Log:       log,
	})

	// Background jobs: nightly retention, plus off-site backups when
	// configured.
	sched := scheduler.New(log)

	cleanupJob := behavior.NewCleanupJob(eventRepo, log)
	if err := sched.AddJob("0 0 3 * * *", cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register retention job")
	}

	if cfg.Backup.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		s3Client, err := reliability.NewS3Client(ctx, reliability.S3ClientConfig{
			Endpoint:        cfg.Backup.Endpoint,
			AccessKeyID:     cfg.Backup.AccessKeyID,
			SecretAccessKey: cfg.Backup.SecretAccessKey,
			Bucket:          cfg.Backup.Bucket,
		}, log)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup storage client")
		}

		backupService := reliability.NewBackupService(behaviorDB, s3Client, cfg.DataDir, log)
		backupJob := reliability.NewBackupJob(backupService, cfg.Backup.RetentionDays)
		if err := sched.AddJob("0 0 1 * * *", backupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		BehaviorDB:  behaviorDB,
		ProfileDB:   profileDB,
		EventRepo:   eventRepo,
		ProfileRepo: profileRepo,
		Composer:    composerService,
		EventBus:    eventBus,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
