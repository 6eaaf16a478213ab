package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"dispatch/cmd"
	"dispatch/internal/adapters/out/configstore"
	"dispatch/internal/adapters/out/postgres/assignmentrepo"
	"dispatch/internal/adapters/out/postgres/jobqueue"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	gormDB, err := openDB(configs)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	if err = migrate(gormDB); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	root := cmd.NewCompositionRoot(configs, gormDB, logger)

	jobManager := root.CreateJobManager(configs)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Background jobs failed to start: %v", err)
	}
	defer jobManager.StopAll()

	e := echo.New()
	e.HideBanner = true

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(
		promhttp.HandlerFor(root.PrometheusRegistry(), promhttp.HandlerOpts{})))

	root.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
}

func getConfigs() cmd.Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load(".env")

	config := cmd.Config{
		HTTPPort:            envOrDefault("HTTP_PORT", "8080"),
		DBHost:              envOrDefault("DB_HOST", "localhost"),
		DBPort:              envOrDefault("DB_PORT", "5432"),
		DBUser:              envOrDefault("DB_USER", "postgres"),
		DBPassword:          envOrDefault("DB_PASSWORD", "postgres"),
		DBName:              envOrDefault("DB_NAME", "dispatch"),
		DBSslMode:           envOrDefault("DB_SSLMODE", "disable"),
		WorkerConcurrency:   envIntOrDefault("WORKER_CONCURRENCY", 4),
		ScanCronSpec:        envOrDefault("SCAN_CRON_SPEC", "*/10 * * * * *"),
		ConstraintsCacheTTL: time.Duration(envIntOrDefault("CONSTRAINTS_CACHE_TTL_SEC", 60)) * time.Second,
	}

	// Flags override the environment.
	pflag.StringVar(&config.HTTPPort, "http-port", config.HTTPPort, "HTTP listen port")
	pflag.IntVar(&config.WorkerConcurrency, "worker-concurrency", config.WorkerConcurrency, "assignment worker goroutines")
	pflag.StringVar(&config.ScanCronSpec, "scan-cron-spec", config.ScanCronSpec, "reconciliation scanner cron spec (with seconds)")
	pflag.Parse()

	return config
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func openDB(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)
	return gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
}

// migrate creates the tables the dispatch engine owns. The orders and
// couriers tables belong to upstream services and are not migrated here.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&assignmentrepo.AssignmentDTO{},
		&jobqueue.JobDTO{},
		&configstore.ConstraintsDTO{},
	)
}
