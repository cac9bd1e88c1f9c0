package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mahbubchula/policysim/internal/clients/llm"
	"github.com/mahbubchula/policysim/internal/config"
	"github.com/mahbubchula/policysim/internal/database"
	"github.com/mahbubchula/policysim/internal/events"
	"github.com/mahbubchula/policysim/internal/modules/agent"
	"github.com/mahbubchula/policysim/internal/modules/history"
	"github.com/mahbubchula/policysim/internal/modules/policy"
	"github.com/mahbubchula/policysim/internal/modules/regions"
	"github.com/mahbubchula/policysim/internal/modules/simulation"
	"github.com/mahbubchula/policysim/internal/reliability"
	"github.com/mahbubchula/policysim/internal/scheduler"
	"github.com/mahbubchula/policysim/internal/server"
	"github.com/mahbubchula/policysim/pkg/logger"
	"github.com/mahbubchula/policysim/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting policy simulation engine")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	historyRepo, err := history.NewRepository(db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize run history")
	}

	regionStore, err := regions.NewStore(cfg.ContextsPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load regional contexts")
	}

	registry := policy.NewRegistry()
	library := policy.NewLibrary()
	eventBus := events.NewManager(log)
	simulator := simulation.New(registry, log)

	var explainer agent.ExplanationService
	if cfg.AnthropicAPIKey != "" {
		client, err := llm.NewClient(llm.Config{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.LLMModel,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize LLM client")
		}
		explainer = client
	} else {
		log.Warn().Msg("No Anthropic API key; natural-language queries and explanations disabled")
	}

	collectors := metrics.New()
	agentSvc := agent.NewService(registry, library, simulator, explainer, eventBus, collectors, log)

	sched := scheduler.New(log)
	sweep := scheduler.NewSweepJob(agentSvc, library, regionStore, historyRepo, eventBus, log)
	if err := sched.AddJob(cfg.SweepSchedule, sweep); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scenario sweep")
	}

	if cfg.BackupEnabled {
		backupSvc, err := reliability.NewBackupService(context.Background(),
			cfg.AWSRegion, cfg.BackupBucket, db.Path(), eventBus, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup service")
		}
		if err := sched.AddJob(cfg.BackupSchedule, reliability.NewBackupJob(backupSvc)); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}

	sched.Start()
	defer sched.Stop()

	// dev instances get sweep data immediately instead of waiting for the
	// overnight schedule
	if cfg.DevMode {
		if err := sched.RunNow(sweep); err != nil {
			log.Warn().Err(err).Msg("Initial scenario sweep failed")
		}
	}

	srv := server.New(server.Config{
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
		Log:      log,
		Agent:    agentSvc,
		Registry: registry,
		Library:  library,
		Regions:  regionStore,
		History:  historyRepo,
		Events:   eventBus,
		Metrics:  collectors,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

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
