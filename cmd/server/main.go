// Package main is the entry point for the bandarscope screener service.
// It wires the data layers (sqlite store, upstream feed client) to the
// pure scoring core (indicator deriver, scoring engine, narrator) and
// exposes the screener over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nugraha/bandarscope/internal/clients/feed"
	"github.com/nugraha/bandarscope/internal/config"
	"github.com/nugraha/bandarscope/internal/database"
	"github.com/nugraha/bandarscope/internal/database/repositories"
	"github.com/nugraha/bandarscope/internal/modules/indicators"
	"github.com/nugraha/bandarscope/internal/modules/narrative"
	"github.com/nugraha/bandarscope/internal/modules/scoring"
	"github.com/nugraha/bandarscope/internal/modules/screener"
	screenerhandlers "github.com/nugraha/bandarscope/internal/modules/screener/handlers"
	"github.com/nugraha/bandarscope/internal/scheduler"
	"github.com/nugraha/bandarscope/internal/server"
	"github.com/nugraha/bandarscope/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)
	log.Info().Str("data_dir", cfg.DataDir).Msg("starting bandarscope")

	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "market.db"),
		Name: "market",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open market database")
	}
	defer db.Close()

	repo, err := repositories.NewMarketRepository(db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize market repository")
	}

	client := feed.NewClient(cfg.FeedBaseURL, filepath.Join(cfg.DataDir, "feed-cache"), log)
	deriver := indicators.New(cfg.Thresholds, log)
	engine := scoring.NewEngine(scoring.PolicyByName(os.Getenv("SCORING_POLICY")), log)
	narrator := narrative.NewNarrator()

	service := screener.NewService(cfg, repo, client, deriver, engine, narrator, log)

	sched := scheduler.New(log)
	if len(cfg.Watchlist) > 0 {
		// Refresh the watchlist shortly after the IDX close.
		if err := sched.AddJob("15 16 * * MON-FRI", scheduler.NewSyncJob(service, cfg.Watchlist, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register sync job")
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:      log,
		Config:   cfg,
		Screener: screenerhandlers.NewHandlers(service, log),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}
