package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scorecore/internal/catalog"
	"github.com/scorecore/internal/config"
	"github.com/scorecore/internal/domain"
	"github.com/scorecore/internal/handler"
	"github.com/scorecore/internal/kafka"
	"github.com/scorecore/internal/ledger"
	"github.com/scorecore/internal/postgres"
	"github.com/scorecore/internal/progress"
	"github.com/scorecore/internal/redis"
	"github.com/scorecore/internal/scheduler"
	"github.com/scorecore/internal/service"
	"github.com/scorecore/internal/websocket"
	"github.com/scorecore/internal/worker"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultConfig()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load the course catalog. A broken catalog is a fatal startup error;
	// serving with a partial course table would corrupt player progress.
	courseDefs := catalog.DefaultCourses(time.Now())
	if cfg.Catalog.Path != "" {
		logger.Info("loading course catalog overlay", "path", cfg.Catalog.Path)
		courseDefs, err = catalog.LoadFile(cfg.Catalog.Path)
		if err != nil {
			logger.Error("failed to load course catalog", "error", err)
			os.Exit(1)
		}
	}
	courseCatalog, err := catalog.New(courseDefs)
	if err != nil {
		logger.Error("invalid course catalog", "error", err)
		os.Exit(1)
	}
	logger.Info("course catalog loaded", "courses", courseCatalog.Len())

	// Initialize Redis
	logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
	cacheService, err := redis.NewCacheService(&cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer cacheService.Close()
	logger.Info("connected to Redis")

	// Initialize PostgreSQL
	logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	postgresRepo, err := postgres.NewRepository(&cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer postgresRepo.Close()
	logger.Info("connected to PostgreSQL")

	// Run database migrations
	if err := postgresRepo.RunMigrations(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize WebSocket hub
	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	// Initialize core components
	scoreLedger := ledger.New(postgresRepo, logger)
	progressEval := progress.New(courseCatalog, postgresRepo, logger)
	challengeScheduler := scheduler.New(
		postgresRepo,
		postgresRepo,
		postgresRepo,
		domain.CurrentVersion,
		cfg.Scheduler.ExcludedSongs,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		logger,
	)

	playService := service.NewPlayService(
		scoreLedger,
		progressEval,
		challengeScheduler,
		courseCatalog,
		cacheService,
		postgresRepo,
		domain.CurrentVersion,
		logger,
	)

	// Set the WebSocket hub on the service for broadcasting
	playService.SetHub(wsHub)

	// Initialize schedule worker
	scheduleWorker := worker.NewScheduleWorker(
		challengeScheduler,
		cacheService,
		postgresRepo,
		wsHub,
		&cfg.Scheduler,
		logger,
	)
	if cfg.Scheduler.Enabled {
		if err := scheduleWorker.Start(ctx); err != nil {
			logger.Error("failed to start schedule worker", "error", err)
			os.Exit(1)
		}
	}

	// Initialize Kafka consumer for high-load play-result ingestion
	var kafkaConsumer *kafka.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		var err error
		kafkaConsumer, err = kafka.NewConsumer(&cfg.Kafka, playService, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else {
			if err := kafkaConsumer.Start(); err != nil {
				logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
				kafkaConsumer = nil
			} else {
				logger.Info("Kafka consumer started successfully")
			}
		}
	}

	// Initialize HTTP handler with WebSocket hub
	httpHandler := handler.NewHandler(playService, wsHub, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		logger.Info("WebSocket endpoint available at /ws")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop WebSocket hub
	wsHub.Stop()

	// Stop Kafka consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}

	// Stop schedule worker
	if scheduleWorker.IsRunning() {
		if err := scheduleWorker.Stop(); err != nil {
			logger.Error("failed to stop schedule worker", "error", err)
		}
	}

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}

	logger.Info("server stopped")
}
