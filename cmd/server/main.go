// @title Expenso API
// @version 1.0
// @description Expense report intake and batch reconciliation service.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expenso/internal/config"
	"expenso/internal/email/noop"
	"expenso/internal/email/ses"
	"expenso/internal/extractor/csvledger"
	"expenso/internal/handler"
	"expenso/internal/port"
	"expenso/internal/recon"
	"expenso/internal/repository/postgres"
	"expenso/internal/router"
	"expenso/internal/service"
	s3storage "expenso/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	fileRepo := postgres.NewFileMetaRepo(db)
	batchRepo := postgres.NewBatchRepo(db)
	recordRepo := postgres.NewRecordRepo(db)
	historyRepo := postgres.NewHistoryRepo(db)
	statsRepo := postgres.NewStatsRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize review notifier
	var notifier port.ReviewNotifier
	switch cfg.Email.Provider {
	case "ses":
		notifier, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		notifier = noop.NewNoopSender()
	}

	// Initialize reconciliation engine
	policy := recon.Policy{
		ConfidenceThreshold: cfg.Recon.ConfidenceThreshold,
		TieMargin:           cfg.Recon.TieMargin,
		AmountTolerance:     cfg.Recon.AmountTolerance,
		MaxCandidates:       cfg.Recon.MaxCandidates,
	}
	engine := recon.NewEngine(historyRepo, policy, time.Duration(cfg.Recon.HistoryTimeoutSecs)*time.Second)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	userSvc := service.NewUserService(userRepo)
	fileSvc := service.NewFileService(fileRepo, s3Client, &cfg.S3)
	extractor := csvledger.NewExtractor()
	batchSvc := service.NewBatchService(batchRepo, recordRepo, userRepo, fileSvc, extractor, engine, notifier)
	recordSvc := service.NewRecordService(recordRepo)
	statsSvc := service.NewStatsService(statsRepo)
	processor := service.NewProcessingService(batchRepo, recordRepo, cfg.Recon.AmountTolerance)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	batchH := handler.NewBatchHandler(batchSvc)
	recordH := handler.NewRecordHandler(recordSvc)
	fileH := handler.NewFileHandler(fileSvc)
	userH := handler.NewUserHandler(userSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, authSvc, authH, batchH, recordH, fileH, userH, statsH, healthH)

	// Start the processing worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker := service.NewProcessQueueWorker(batchRepo, processor, service.ProcessQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(workerCtx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	stopWorker()
	<-workerDone
	log.Println("shutdown complete")

	return nil
}
