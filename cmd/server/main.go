package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skywage-service/formats"
	"skywage-service/internal/infrastructure/config"
	"skywage-service/internal/infrastructure/persistence"
	"skywage-service/internal/infrastructure/router"
	interfaceRepo "skywage-service/internal/interface/repository"
	"skywage-service/internal/usecase"
	"skywage-service/pkg/logger"
	"skywage-service/pkg/metrics"
	"skywage-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Skywage Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	db := persistence.GetDatabase(mongoClient, cfg.MongoDB)

	// Set up Postgres connection
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgresDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	dutyRepo := interfaceRepo.NewGormFlightDutyRepository(gormDB)
	profileRepo := interfaceRepo.NewGormProfileRepository(gormDB)
	layoverRepo := interfaceRepo.NewGormLayoverRepository(gormDB)
	calcRepo := interfaceRepo.NewGormMonthlyCalculationRepository(gormDB)
	rosterStore := interfaceRepo.NewGormRosterStore(gormDB)
	uploadRepo := interfaceRepo.NewMongoUploadRepository(db)
	auditRepo := interfaceRepo.NewMongoAuditRepository(db)

	// Set up metrics
	m := metrics.NewMetrics("skywage")

	// Set up the processing pipeline
	classifier := utils.NewDutyClassifier(cfg.HomeBase, log)
	calculator := usecase.NewPayCalculator()
	rates := usecase.NewRateResolver()
	detector := usecase.NewStructureDetector(log)
	builder := usecase.NewDutyBuilder(classifier, calculator, log)
	pairer := usecase.NewLayoverPairer(calculator, cfg.HomeBase, log)
	recalcEngine := usecase.NewRecalculationEngine(dutyRepo, layoverRepo, calcRepo, rates, pairer, calculator, m, log)

	formatRouter := router.NewFormatRouter(log)
	formatRouter.Register(formats.NewCSVRosterReader(log))
	formatRouter.Register(formats.NewExcelRosterReader(log))

	processor := usecase.NewUploadProcessor(uploadRepo, dutyRepo, profileRepo, rosterStore, auditRepo,
		formatRouter, detector, builder, rates, recalcEngine, m, log)
	dutyService := usecase.NewDutyService(dutyRepo, profileRepo, rosterStore, auditRepo,
		rates, calculator, recalcEngine, m, log)

	// Start the pending-upload sweep in a goroutine
	go func() {
		sweepTicker := time.NewTicker(cfg.SweepInterval)
		defer sweepTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Upload sweep stopped")
				return
			case <-sweepTicker.C:
				if err := processor.ProcessPendingUploads(ctx); err != nil {
					log.Error("Error processing pending uploads", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	apiHandler := router.NewAPIHandler(processor, dutyService, recalcEngine, log)
	apiHandler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(context.Background()); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Skywage Service stopped")
}
