package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alcyxob/training-engine/internal/api"
	"alcyxob/training-engine/internal/config"
	"alcyxob/training-engine/internal/observability"
	"alcyxob/training-engine/internal/repository"
	"alcyxob/training-engine/internal/repository/memory"
	"alcyxob/training-engine/internal/repository/mongo"
	"alcyxob/training-engine/internal/scheduler"
	"alcyxob/training-engine/internal/service"
	"alcyxob/training-engine/internal/storage"
	"alcyxob/training-engine/internal/tracing"
)

// @title Training Engine API
// @version 1.0
// @description Periodized plan generation and session-driven adaptation.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// no logger yet
		zap.NewExample().Fatal("could not load config", zap.Error(err))
	}

	logger := observability.NewLogger(cfg.Logger, nil)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting training engine", zap.String("address", cfg.Server.Address))

	if cfg.JWT.Secret == "" {
		logger.Fatal("jwt.secret must be set")
	}

	// --- Tracing ---
	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(ctx); err != nil {
				logger.Error("tracer shutdown", zap.Error(err))
			}
		}()
	}

	// --- Metrics ---
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	// --- Repositories ---
	var (
		stateRepo    repository.StateRepository
		sessionRepo  repository.SessionRepository
		snapshotRepo repository.SnapshotRepository
	)
	if cfg.Database.InMemory() {
		logger.Warn("using in-memory repositories; state is lost on exit")
		stateRepo = memory.NewStateRepository()
		sessionRepo = memory.NewSessionRepository()
		snapshotRepo = memory.NewSnapshotRepository()
	} else {
		dbClient, err := mongo.ConnectDB(cfg.Database.URI)
		if err != nil {
			logger.Fatal("could not connect to MongoDB", zap.Error(err))
		}
		defer func() {
			logger.Info("disconnecting MongoDB")
			if err := mongo.DisconnectDB(dbClient); err != nil {
				logger.Error("failed to disconnect MongoDB", zap.Error(err))
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			if err := mongo.EnsureIndexes(ctx, appDB); err != nil {
				logger.Error("index creation failed", zap.Error(err))
				return
			}
			logger.Info("indexes ensured")
		}()

		stateRepo = mongo.NewMongoStateRepository(appDB)
		sessionRepo = mongo.NewMongoSessionRepository(appDB)
		snapshotRepo = mongo.NewMongoSnapshotRepository(appDB)
	}

	// --- Storage ---
	var archive storage.ObjectStorage
	switch {
	case cfg.S3.BucketName != "":
		archive, err = storage.NewS3Storage(context.Background(), cfg.S3, logger)
		if err != nil {
			logger.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	case cfg.Database.InMemory():
		archive = storage.NewMemoryStorage("local")
	default:
		logger.Warn("no snapshot bucket configured; archiving disabled")
	}

	// --- Services ---
	opts := []service.Option{service.WithRecorder(metrics)}
	if archive != nil {
		opts = append(opts, service.WithArchive(archive, snapshotRepo, cfg.S3.SnapshotPrefix))
	}
	planService := service.NewPlanService(service.EngineConfigFrom(cfg.Engine), stateRepo, sessionRepo, logger, opts...)
	catalogService := service.NewCatalogService()

	config.WatchEngine(viper.GetViper(), func(e config.EngineConfig) {
		planService.UpdatePolicy(service.PolicyFrom(e.Policy))
		logger.Info("adaptation policy reloaded")
	}, func(err error) {
		logger.Warn("config reload rejected", zap.Error(err))
	})

	// --- Scheduler ---
	if cfg.Scheduler.Enabled {
		sweeper, err := scheduler.New("monitor-sweep", cfg.Scheduler.SweepSpec, planService.Sweep, 0, logger)
		if err != nil {
			logger.Fatal("invalid scheduler config", zap.Error(err))
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	// --- Router ---
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Metrics.Enabled {
		router.Use(metrics.MetricsMiddleware())
		router.GET(cfg.Metrics.Path, metrics.Handler())
	}
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}
	router.Use(api.RateLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window))

	api.SetupRoutes(router, cfg.JWT.Secret, planService, catalogService, logger)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}
