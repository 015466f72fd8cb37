package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bidquotes/internal/config"
	"bidquotes/internal/handlers"
	"bidquotes/internal/middleware"
	"bidquotes/internal/repositories/mongodb"
	"bidquotes/internal/services"
	"bidquotes/pkg/cache"
	"bidquotes/pkg/database"
	"bidquotes/pkg/logger"
	"bidquotes/pkg/payment"
	"bidquotes/pkg/storage"
	"bidquotes/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.Config{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db.Database); err != nil {
		cancelIndexes()
		appLogger.WithError(err).Fatal("Failed to create indexes")
	}
	cancelIndexes()

	redisCache, err := cache.NewRedisCache(&cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	storageProvider, err := newStorageProvider(cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}

	checkoutProvider := payment.NewStripeProvider(cfg.Payment.Stripe.SecretKey, cfg.Payment.Stripe.WebhookSecret)

	// Repositories
	cacheService := services.NewRedisCacheService(redisCache)
	userRepo := mongodb.NewUserRepository(db.Database, cacheService)
	buyerProfileRepo := mongodb.NewBuyerProfileRepository(db.Database)
	contractorProfileRepo := mongodb.NewContractorProfileRepository(db.Database)
	jobRepo := mongodb.NewJobRepository(db.Database)
	bidRepo := mongodb.NewBidRepository(db.Database)
	creditRepo := mongodb.NewCreditRepository(db.Database)
	paymentRepo := mongodb.NewPaymentRepository(db.Database, cacheService)

	// Services
	emailService := services.NewSMTPEmailService(cfg.SMTP, appLogger)
	creditService := services.NewCreditService(creditRepo, db, appLogger)
	userService := services.NewUserService(userRepo, buyerProfileRepo, contractorProfileRepo, appLogger)
	profileService := services.NewProfileService(buyerProfileRepo, contractorProfileRepo, appLogger)
	bidService := services.NewBidService(bidRepo, jobRepo, userRepo, buyerProfileRepo, paymentRepo, creditService, emailService, db, appLogger)
	jobService := services.NewJobService(jobRepo, bidRepo, userRepo, contractorProfileRepo, emailService, storageProvider, db, appLogger)
	paymentService := services.NewPaymentService(
		paymentRepo, bidRepo, userRepo, contractorProfileRepo,
		creditService, bidService, emailService, checkoutProvider,
		cfg.App, cfg.Payment.Currency, appLogger,
	)

	// Handlers
	jobHandler := handlers.NewJobHandler(jobService)
	bidHandler := handlers.NewBidHandler(bidService, creditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	profileHandler := handlers.NewProfileHandler(profileService)
	adminHandler := handlers.NewAdminHandler(creditService)
	webhookHandler := handlers.NewWebhookHandler(paymentService, userService, cfg.Webhook.IdentitySecret, appLogger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	auth := middleware.AuthRequired(cfg.Security.JWTSecret, userService)

	v1 := router.Group("/api/v1")
	{
		routes.SetupJobRoutes(v1, jobHandler, auth)
		routes.SetupBidRoutes(v1, bidHandler, auth)
		routes.SetupPaymentRoutes(v1, paymentHandler, auth)
		routes.SetupProfileRoutes(v1, profileHandler, auth)
		routes.SetupAdminRoutes(v1, adminHandler, auth)
		routes.SetupWebhookRoutes(v1, webhookHandler)
	}

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"mongodb": "up", "redis": "up"}
		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			checks["mongodb"] = "down"
		}
		if err := redisCache.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = "down"
		}
		c.JSON(status, gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
			"checks":  checks,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.App.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
}

func newStorageProvider(cfg *config.StorageConfig) (storage.Provider, error) {
	switch cfg.Provider {
	case "s3":
		return storage.NewAWSS3Storage(cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.CDNDomain)
	case "gcs":
		return storage.NewGCPStorage(cfg.GCP.Bucket, cfg.GCP.CredentialsFile, cfg.GCP.CDNDomain)
	case "local":
		return storage.NewLocalStorage(cfg.Local.BasePath, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
