package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	httpapi "rentshare-backend/internal/api/http"
	"rentshare-backend/internal/cache/quotecache"
	"rentshare-backend/internal/config"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/pricing"
	"rentshare-backend/internal/repository/postgres"
	"rentshare-backend/internal/security"
	"rentshare-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Environment overrides may live in a local .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Failed to load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentShare Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "time_zone", cfg.Location().String())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Email configuration", "provider", cfg.Email.Provider, "from", cfg.Email.FromEmail)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Error("Failed to ping redis", "error", err, "addr", cfg.Redis.Addr)
		log.Fatalf("Failed to ping redis: %v", err)
	}
	logger.Info("Redis connection established", "addr", cfg.Redis.Addr)

	// Initialize Repositories
	store := postgres.NewStore(db)
	quotes := quotecache.New(rdb)

	// Initialize Services
	clock := service.SystemClock{}
	engine := pricing.NewEngine(cfg.Pricing.Rates())
	emailSvc := service.NewEmailService(cfg.Email)
	quoteSvc := service.NewQuoteService(
		store.ListingRepository,
		store.PointsRepository,
		quotes,
		engine,
		clock,
		cfg.Location(),
		cfg.QuoteTTL(),
	)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.ListingRepository,
		store.UserRepository,
		store.PointsRepository,
		store.NotificationRepository,
		quotes,
		emailSvc,
		clock,
		cfg.Location(),
		cfg.Pricing.EarnPointsPerUnit,
	)

	// Initialize HTTP layer
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)
	quoteLimiter, err := httpapi.NewRateLimiter(rdb, cfg.RateLimit.Quotes, "quotes")
	if err != nil {
		logger.Error("Failed to create quote rate limiter", "error", err)
		log.Fatalf("Failed to create quote rate limiter: %v", err)
	}

	handler := httpapi.NewHandler(quoteSvc, bookingSvc, map[string]httpapi.HealthCheck{
		"postgres": db.PingContext,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})
	router := httpapi.NewRouter(handler, httpapi.NewAuthMiddleware(tokenManager), quoteLimiter.Handler)

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
