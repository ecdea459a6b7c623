package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/tracewright/apqp-engine/pkg/config"
	"github.com/tracewright/apqp-engine/pkg/database"
	"github.com/tracewright/apqp-engine/pkg/handlers"
	"github.com/tracewright/apqp-engine/pkg/llm"
	"github.com/tracewright/apqp-engine/pkg/logging"
	"github.com/tracewright/apqp-engine/pkg/middleware"
	"github.com/tracewright/apqp-engine/pkg/repositories"
	"github.com/tracewright/apqp-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeDSN(cfg.Database.URL())),
		zap.Bool("narrative_enabled", cfg.Narrative.IsAvailable()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	stdDB := stdlib.OpenDBFromPool(db.Pool)
	if err := database.RunMigrations(stdDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}

	products := repositories.NewProductRepository(db)
	characteristics := repositories.NewCharacteristicRepository(db)
	riskHeaders := repositories.NewRiskHeaderRepository(db)
	riskLines := repositories.NewRiskLineRepository(db)
	controlPlans := repositories.NewControlPlanRepository(db)
	controlItems := repositories.NewControlPlanItemRepository(db)
	sops := repositories.NewSopRepository(db)
	sopSteps := repositories.NewSopStepRepository(db)
	standards := repositories.NewInspectionStandardRepository(db)
	inspections := repositories.NewInspectionItemRepository(db)

	genOpts := services.GenerationOptions{
		NarrativeTimeout: cfg.Narrative.Timeout(),
	}
	if cfg.Narrative.IsAvailable() {
		narrative, err := llm.NewClient(&llm.Config{
			Endpoint: cfg.Narrative.Endpoint,
			Model:    cfg.Narrative.Model,
			APIKey:   cfg.Narrative.APIKey,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create narrative client", zap.Error(err))
		}
		genOpts.Narrative = narrative
		logger.Info("Enhanced narrative generator enabled", zap.String("generator", narrative.Name()))
	}

	generation := services.NewGenerationService(services.GenerationStores{
		Products:        products,
		Characteristics: characteristics,
		RiskHeaders:     riskHeaders,
		RiskLines:       riskLines,
		ControlPlans:    controlPlans,
		ControlItems:    controlItems,
		Sops:            sops,
		SopSteps:        sopSteps,
		Standards:       standards,
		Inspections:     inspections,
	}, genOpts, logger)

	consistency := services.NewConsistencyService(services.ConsistencyStores{
		Characteristics: characteristics,
		RiskHeaders:     riskHeaders,
		RiskLines:       riskLines,
		ControlPlans:    controlPlans,
		ControlItems:    controlItems,
		Sops:            sops,
		SopSteps:        sopSteps,
		Standards:       standards,
		Inspections:     inspections,
	}, logger)

	documents := services.NewDocumentService(services.DocumentStores{
		RiskHeaders:  riskHeaders,
		RiskLines:    riskLines,
		ControlPlans: controlPlans,
		ControlItems: controlItems,
		Sops:         sops,
		SopSteps:     sopSteps,
		Standards:    standards,
		Inspections:  inspections,
	}, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, db.Pool, logger).RegisterRoutes(mux)
	handlers.NewProductsHandler(products, logger).RegisterRoutes(mux)
	handlers.NewCharacteristicsHandler(products, characteristics, logger).RegisterRoutes(mux)
	handlers.NewGenerationHandler(generation, logger).RegisterRoutes(mux)
	handlers.NewDocumentsHandler(documents, logger).RegisterRoutes(mux)
	handlers.NewConsistencyHandler(consistency, logger).RegisterRoutes(mux)
	handlers.NewExportHandler(documents, consistency, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting apqp-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
