package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andrev/phraseflash/internal/api"
	"github.com/andrev/phraseflash/internal/config"
	"github.com/andrev/phraseflash/internal/content"
	"github.com/andrev/phraseflash/internal/credentials"
	"github.com/andrev/phraseflash/internal/db"
	"github.com/andrev/phraseflash/internal/logger"
	"github.com/andrev/phraseflash/internal/reminder"
	"github.com/andrev/phraseflash/internal/repository/sqlite"
	"github.com/andrev/phraseflash/internal/session"
	"github.com/andrev/phraseflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("PhraseFlash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration: %v", err)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("content_worker_count=%d", cfg.ContentWorkerCount)
	log.Debug("content_queue_size=%d", cfg.ContentQueueSize)
	log.Debug("reminder_interval_hours=%d", cfg.ReminderIntervalHours)
	log.Debug("default_max_items=%d", cfg.DefaultMaxItems)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal("failed to open database: %v", err)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	profileRepo := sqlite.NewProfileRepository(database)
	phraseRepo := sqlite.NewPhraseRepository(database)
	reviewRepo := sqlite.NewReviewRepository(database)
	sessionRepo := sqlite.NewSessionRepository(database)
	statsRepo := sqlite.NewStatsRepository(database)

	// Keys stored through the credential endpoints win over the environment
	// and take effect without a restart.
	creds := credentials.NewStore()
	keyFn := func() string {
		return creds.GetOr("openai", "api_key", cfg.OpenAIAPIKey)
	}
	openaiClient := content.NewOpenAIClient(keyFn, cfg.OpenAIModel)

	sessionManager := session.NewManager(phraseRepo, reviewRepo, sessionRepo, openaiClient, openaiClient)

	contentPool := worker.NewPool(cfg.ContentWorkerCount, cfg.ContentQueueSize)

	srv := &api.Server{
		DB:          database,
		Sessions:    sessionManager,
		Profiles:    profileRepo,
		Phrases:     phraseRepo,
		Reviews:     reviewRepo,
		SessionRepo: sessionRepo,
		Stats:       statsRepo,
		Credentials: creds,
		Speech:      openaiClient,
		ContentPool: contentPool,
		DefaultLang: cfg.DefaultSourceLang,
		TargetLang:  cfg.DefaultTargetLang,
		MaxItems:    cfg.DefaultMaxItems,
	}

	ctx, cancel := context.WithCancel(context.Background())
	contentPool.Start(ctx)

	dueReminder := reminder.New(profileRepo, phraseRepo, reminder.LogNotifier{},
		time.Duration(cfg.ReminderIntervalHours)*time.Hour)
	if err := dueReminder.Start(ctx); err != nil {
		log.Error("failed to start reminder scheduler: %v", err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping background workers")
	cancel()
	dueReminder.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	contentPool.Stop()

	log.Info("===========================================")
	log.Info("PhraseFlash Server Stopped")
	log.Info("===========================================")
}
