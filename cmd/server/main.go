package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/cache"
	"github.com/yourorg/tagpack-service/internal/config"
	"github.com/yourorg/tagpack-service/internal/events"
	"github.com/yourorg/tagpack-service/internal/handler"
	"github.com/yourorg/tagpack-service/internal/middleware"
	"github.com/yourorg/tagpack-service/internal/repository"
	"github.com/yourorg/tagpack-service/internal/service"
	"github.com/yourorg/tagpack-service/internal/tagpack"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := repository.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	tagRepo := repository.NewTagRepository(db, cfg.Database.MaxRetries, logger)
	actorRepo := repository.NewActorRepository(db, cfg.Database.MaxRetries, logger)

	// Optional collaborators stay nil interfaces when disabled
	var digestCache service.Cache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("Redis unreachable, digests will be computed on every request", zap.Error(err))
		}
		digestCache = cache.NewDigestCache(redisClient, cfg.Redis.Prefix, cfg.Redis.TTL, logger)
	}

	var publisher service.Publisher
	if brokers := cfg.Kafka.BrokerList(); len(brokers) > 0 {
		producer := events.NewProducer(brokers, cfg.Kafka.ClientID, logger)
		defer producer.Close()
		publisher = producer
	} else {
		logger.Info("No Kafka brokers configured, pack events are disabled")
	}

	// Initialize services
	loader := tagpack.NewLoader(cfg.Tagpack.ConfidenceLevels, cfg.Digest.KnownConcepts)
	digestService := service.NewDigestService(tagRepo, digestCache, cfg.Digest.StrictTokenMatch, logger)
	tagService := service.NewTagService(tagRepo, logger)
	actorService := service.NewActorService(actorRepo, logger)
	ingestService := service.NewIngestService(
		loader,
		tagRepo,
		actorRepo,
		digestCache,
		publisher,
		cfg.Kafka.TagpackTopic,
		logger,
	)

	// Initialize handlers
	handlers := handler.Handlers{
		Digest: handler.NewDigestHandler(digestService, logger),
		Tag:    handler.NewTagHandler(tagService, logger),
		Actor:  handler.NewActorHandler(actorService, logger),
		Pack:   handler.NewPackHandler(ingestService, cfg.Tagpack.MaxBodyBytes, logger),
	}

	opts := handler.RouterOptions{
		Verifier:    middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		CuratorRole: cfg.Auth.CuratorRole,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.RateLimit.Enabled {
		opts.RateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize)
		opts.RateLimit = cfg.RateLimit.RequestsPerMinute
		go pruneLimiter(ctx, opts.RateLimiter)
	}

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handlers, opts, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	// Create a deadline for server shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func pruneLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Prune()
		}
	}
}

func createLogger(level, format string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if format != "console" {
		format = "json"
	}

	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         format,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
