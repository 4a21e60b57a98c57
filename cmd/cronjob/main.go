package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"rentshare-backend/internal/cache/quotecache"
	"rentshare-backend/internal/config"
	"rentshare-backend/internal/jobs"
	"rentshare-backend/internal/logger"
	"rentshare-backend/internal/repository/postgres"
	"rentshare-backend/internal/scheduler"
	"rentshare-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'send-pickup-reminders', 'all')")
	flag.Parse()

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
	logger.Info("Starting RentShare Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	clock := service.SystemClock{}
	emailService := service.NewEmailService(cfg.Email)
	bookingService := service.NewBookingService(
		store.BookingRepository,
		store.ListingRepository,
		store.UserRepository,
		store.PointsRepository,
		store.NotificationRepository,
		quotecache.New(rdb),
		emailService,
		clock,
		cfg.Location(),
		cfg.Pricing.EarnPointsPerUnit,
	)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(
		&jobs.Repositories{
			Booking: store.BookingRepository,
			Listing: store.ListingRepository,
			User:    store.UserRepository,
		},
		&jobs.Services{
			Email:   emailService,
			Booking: bookingService,
		},
		cfg,
		clock,
	)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "send-pickup-reminders":
		jobRunner.SendPickupReminders()
	case "send-return-reminders":
		jobRunner.SendReturnReminders()
	case "expire-unpaid-bookings":
		jobRunner.ExpireUnpaidBookings()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - send-pickup-reminders\n")
		fmt.Printf("  - send-return-reminders\n")
		fmt.Printf("  - expire-unpaid-bookings\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
