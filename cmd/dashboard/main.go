package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/antonhoreis/analytics-dashboard/internal/attribution"
	"github.com/antonhoreis/analytics-dashboard/internal/attribution/sqlite"
	"github.com/antonhoreis/analytics-dashboard/internal/config"
	"github.com/antonhoreis/analytics-dashboard/internal/handler"
	"github.com/antonhoreis/analytics-dashboard/internal/logger"
	"github.com/antonhoreis/analytics-dashboard/internal/service"
	"github.com/antonhoreis/analytics-dashboard/internal/source"
	"github.com/antonhoreis/analytics-dashboard/internal/source/jsonfile"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.ServiceEnvironment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting dashboard service",
		zap.String("environment", cfg.ServiceEnvironment),
		zap.String("port", cfg.ServiceAPIPort))

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal("Invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	ctx := context.Background()

	// Initialize attribution snapshot repository
	snapshots, err := sqlite.Open(cfg.AttributionSnapshotPath, log)
	if err != nil {
		log.Fatal("Failed to open attribution snapshot database", zap.Error(err))
	}
	defer func(snapshots *sqlite.Repository) {
		if err := snapshots.Close(); err != nil {
			log.Error("Failed to close snapshot database", zap.Error(err))
		}
	}(snapshots)

	// Initialize source collaborators
	sources := jsonfile.New(cfg.SourceDataDir, loc, log)

	// Initialize attribution store and seed it from the snapshot
	store := attribution.NewStore(sources, snapshots,
		time.Duration(cfg.AttributionRefreshTimeoutSec)*time.Second, log)
	if err := store.LoadSnapshot(ctx); err != nil {
		log.Fatal("Failed to load attribution snapshot", zap.Error(err))
	}

	coercion := source.CoercionStrict
	if cfg.AdCoercionMode == "lenient" {
		coercion = source.CoercionLenient
	}

	// Initialize dashboard service
	dashboardService := service.NewDashboardService(
		service.Sources{
			Ads:      []source.AdMetricsFetcher{sources},
			Deals:    sources,
			Meetings: sources,
			Sessions: sources,
			Ledger:   sources,
			Staff:    sources,
		},
		store,
		loc,
		coercion,
		cfg.ResultCacheSize,
		time.Duration(cfg.ResultCacheTTLSec)*time.Second,
		log,
	)

	// Initialize handler
	h := handler.NewHandler(dashboardService, log)

	addr := fmt.Sprintf(":%s", cfg.ServiceAPIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
