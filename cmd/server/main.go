package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rent-home/service-matching/internal/application"
	"github.com/rent-home/service-matching/internal/commute"
	"github.com/rent-home/service-matching/internal/config"
	catalogEvents "github.com/rent-home/service-matching/internal/events"
	"github.com/rent-home/service-matching/internal/handler"
	"github.com/rent-home/service-matching/internal/matching"
	"github.com/rent-home/service-matching/internal/platform/auth"
	"github.com/rent-home/service-matching/internal/platform/database"
	"github.com/rent-home/service-matching/internal/platform/health"
	"github.com/rent-home/service-matching/internal/platform/kafka"
	"github.com/rent-home/service-matching/internal/platform/logger"
	"github.com/rent-home/service-matching/internal/platform/middleware"
	"github.com/rent-home/service-matching/internal/repository"
	"github.com/rent-home/service-matching/internal/storage"
	"github.com/rent-home/service-matching/internal/verification"
)

const serviceName = "service-matching"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.Bool("map_key_configured", cfg.Map.Key != ""),
		zap.Bool("storage_configured", cfg.Storage.Enabled()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.ApartmentModel{},
			&repository.UserModel{},
			&repository.AdminModel{},
			&repository.OrderModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Connect to Redis for verification codes
	rdb, err := database.NewRedis(ctx, cfg.RedisConfig)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.UserTokenTTL,
		cfg.JWTConfig.AdminTokenTTL,
	)

	// Initialize Kafka producer; events are disabled without brokers
	var publisher application.EventPublisher
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	} else {
		log.Warn("KAFKA_BROKERS not set, catalog and match events are disabled")
	}

	// Initialize repositories
	apartmentRepo := repository.NewGormApartmentRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	adminRepo := repository.NewGormAdminRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)

	// Initialize the commute pipeline
	tencent := commute.NewTencentClient(commute.TencentConfig{
		Key:     cfg.Map.Key,
		BaseURL: cfg.Map.BaseURL,
		Timeout: cfg.Map.Timeout,
	}, log)
	geocoder := commute.NewGeocoder(tencent, nil, log)
	router := commute.NewRouter(tencent, geocoder, nil, log)
	throttle := rate.NewLimiter(rate.Every(cfg.Map.RequestInterval), 1)
	matcher := matching.NewMatcher(router, throttle, log)

	// Initialize media storage
	var mediaStore application.MediaStore
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3MediaStore(ctx, storage.Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicDomain:    cfg.Storage.PublicDomain,
		})
		if err != nil {
			log.Fatal("failed to initialize media storage", zap.Error(err))
		}
		mediaStore = store
	}

	// Initialize application services
	apartmentService := application.NewApartmentService(apartmentRepo, publisher, log)
	matchService := application.NewMatchService(apartmentRepo, matcher, publisher, log)
	mediaService := application.NewMediaService(mediaStore, log)
	suggestionService := application.NewSuggestionService(tencent, cfg.Map.DefaultRegion, log)
	subscriptionService := application.NewSubscriptionService(orderRepo, log)
	authService := application.NewAuthService(
		userRepo,
		adminRepo,
		orderRepo,
		verification.NewRedisCodeStore(rdb, cfg.Auth.CodeTTL, cfg.Auth.ResendCooldown),
		jwtManager,
		cfg.Auth.SMSMasterCode,
		log,
	)

	// Bootstrap data
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		log.Fatal("failed to create bootstrap admin", zap.Error(err))
	}
	if cfg.CatalogSeedFile != "" {
		if _, err := apartmentService.SeedFromFile(ctx, cfg.CatalogSeedFile); err != nil {
			log.Error("failed to seed catalog", zap.String("file", cfg.CatalogSeedFile), zap.Error(err))
		}
	}

	// Initialize and start catalog import consumer in a goroutine
	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + serviceName
		importConsumer := catalogEvents.NewCatalogImportConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			apartmentService,
			log,
		)
		defer func() { _ = importConsumer.Close() }()

		go func() {
			log.Info("starting catalog import consumer")
			if err := importConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("catalog import consumer error", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	var subscriptionGate handler.SubscriptionChecker
	if cfg.MatchRequireSubscription {
		subscriptionGate = subscriptionService
	}
	matchHandler := handler.NewMatchHandler(matchService, subscriptionGate)
	apartmentHandler := handler.NewApartmentHandler(apartmentService, mediaService, suggestionService)
	suggestionHandler := handler.NewSuggestionHandler(suggestionService)
	authHandler := handler.NewAuthHandler(authService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	appHealthHandler := handler.NewHealthHandler(apartmentService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Apply global middleware
	engine.Use(middleware.RecoveryMiddleware(log))
	engine.Use(middleware.LoggerMiddleware(log))
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.CORSMiddleware())
	engine.Use(middleware.SecurityHeadersMiddleware())

	// Register health check and metrics routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(engine)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register routes
	appHealthHandler.RegisterRoutes(&engine.RouterGroup)
	matchHandler.RegisterRoutes(&engine.RouterGroup, jwtManager)
	apartmentHandler.RegisterRoutes(&engine.RouterGroup, jwtManager)
	suggestionHandler.RegisterRoutes(&engine.RouterGroup)
	authHandler.RegisterRoutes(&engine.RouterGroup, jwtManager)
	subscriptionHandler.RegisterRoutes(&engine.RouterGroup, jwtManager)

	// Create HTTP server. Matching runs are paced, so writes get a long deadline.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
