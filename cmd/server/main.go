package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jleechris06/optimizeme/internal/clients/edgar"
	"github.com/jleechris06/optimizeme/internal/clients/finbert"
	"github.com/jleechris06/optimizeme/internal/clients/news"
	"github.com/jleechris06/optimizeme/internal/clients/yahoo"
	"github.com/jleechris06/optimizeme/internal/config"
	"github.com/jleechris06/optimizeme/internal/database"
	"github.com/jleechris06/optimizeme/internal/database/repositories"
	"github.com/jleechris06/optimizeme/internal/modules/allocation"
	"github.com/jleechris06/optimizeme/internal/modules/blacklitterman"
	"github.com/jleechris06/optimizeme/internal/modules/marketdata"
	"github.com/jleechris06/optimizeme/internal/modules/optimization"
	"github.com/jleechris06/optimizeme/internal/modules/views"
	"github.com/jleechris06/optimizeme/internal/scheduler"
	"github.com/jleechris06/optimizeme/internal/server"
	"github.com/jleechris06/optimizeme/pkg/logger"
	"github.com/jleechris06/optimizeme/pkg/matrix"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting optimizeme")

	// Initialize snapshot cache
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	snapshots := repositories.NewSnapshotRepository(db.Conn(), log)

	// External collaborators
	edgarClient := edgar.NewClient(cfg.SecUserAgent, snapshots, log)
	yahooClient := yahoo.NewClient(log)
	finbertClient := finbert.NewClient(cfg.FinbertServiceURL, log)
	newsScraper := news.NewScraper(log)

	// Numeric pipeline
	kernel := matrix.NewKernel(cfg.SingularThreshold, cfg.InverseCheckTol, log)
	marketService := marketdata.NewService(yahooClient, snapshots, log)
	allocationService := allocation.NewService(
		allocation.NewEdgarFundamentalsSource(edgarClient),
		allocation.NewNewsSentimentSource(newsScraper, finbertClient, snapshots, log),
		marketService,
		views.NewBuilder(cfg.ViewConfidence),
		blacklitterman.NewEngine(kernel, log),
		optimization.NewOptimizer(kernel, log),
		cfg.Tau,
		log,
	)

	// Scheduler with the daily market data refresh
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if err := sched.AddJob("0 0 6 * * *", scheduler.NewMarketRefreshJob(marketService)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register market refresh job")
	}

	// HTTP server
	srv := server.New(server.Config{
		Port:       cfg.Port,
		Log:        log,
		Allocation: allocation.NewHandler(allocationService, log),
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
