package main

import (
	"alcyxob/fitplan/internal/api"
	"alcyxob/fitplan/internal/config"
	"alcyxob/fitplan/internal/metrics"
	"alcyxob/fitplan/internal/repository"
	"alcyxob/fitplan/internal/repository/memory"
	"alcyxob/fitplan/internal/repository/mongo"
	"alcyxob/fitplan/internal/service"
	"alcyxob/fitplan/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			return serve(cfg, logger)
		},
	}
}

func serve(cfg config.Config, logger *slog.Logger) error {
	logger.Info("Starting fitplan server", "config_file", config.ConfigFileUsed(), "store", cfg.Store.Driver)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// --- Plan Store ---
	planRepo, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Initialize Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, logger)
		if err != nil {
			return fmt.Errorf("initialize S3 storage: %w", err)
		}
	} else {
		logger.Info("Plan archiving disabled, no S3 bucket configured")
	}

	// --- Model Client ---
	modelClient := newModelClient(cfg.Gemini, logger, m)
	if !modelClient.Configured() {
		logger.Warn("GEMINI_API_KEY is not set; plan generation will fail until it is configured")
	}
	if config.ConfigFileUsed() != "" {
		config.WatchConfig(func(newCfg config.Config, err error) {
			if err != nil {
				logger.Error("Ignoring invalid config change", "error", err)
				return
			}
			modelClient.SetAPIKey(newCfg.Gemini.APIKey)
			logger.Info("Config reloaded", "gemini_configured", modelClient.Configured())
		})
	}

	// --- Initialize Services ---
	exportService := service.NewExportService(planRepo, fileStorage, logger)
	catalogService := service.NewCatalogService(planRepo, exportService, logger, m)
	planService := service.NewPlanService(modelClient, logger, m)

	if n, err := planRepo.Count(context.Background()); err == nil {
		m.SetSavedPlans(n)
	}

	// --- Initialize Gin Engine ---
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		CORSOrigin:     cfg.Server.CORSOrigin,
		PlanService:    planService,
		CatalogService: catalogService,
		ExportService:  exportService,
		Generator:      modelClient,
		Metrics:        m,
		Logger:         logger,
	})

	// Generation may take every attempt plus the delays between them.
	worstCase := time.Duration(cfg.Gemini.MaxAttempts)*cfg.Gemini.Timeout +
		time.Duration(cfg.Gemini.MaxAttempts-1)*cfg.Gemini.RetryDelay

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: worstCase + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// --- Graceful Shutdown ---
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	logger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting.")
	return nil
}

// openStore returns the configured PlanRepository and a function releasing it.
func openStore(cfg config.Config, logger *slog.Logger) (repository.PlanRepository, func(), error) {
	if cfg.Store.Driver != config.StoreMongo {
		return memory.NewPlanRepository(), func() {}, nil
	}

	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	appDB := dbClient.Database(cfg.Database.Name)
	logger.Info("Database connection established", "database", cfg.Database.Name)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	mongo.EnsurePlanIndexes(ctx, appDB, logger)
	cancel()

	closeFn := func() {
		logger.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			logger.Error("Failed to disconnect MongoDB", "error", err)
		}
	}
	return mongo.NewMongoPlanRepository(appDB), closeFn, nil
}
