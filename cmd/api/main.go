package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/naijabook/platform/cmd/mainconfig"
	"github.com/naijabook/platform/internal/api/router"
	"github.com/naijabook/platform/internal/app/bootstrap"
	"github.com/naijabook/platform/internal/availability"
	"github.com/naijabook/platform/internal/booking"
	"github.com/naijabook/platform/internal/calendar"
	"github.com/naijabook/platform/internal/catalog"
	appconfig "github.com/naijabook/platform/internal/config"
	"github.com/naijabook/platform/internal/events"
	"github.com/naijabook/platform/internal/http/handlers"
	"github.com/naijabook/platform/internal/observability/metrics"
	"github.com/naijabook/platform/internal/recurrence"
	"github.com/naijabook/platform/internal/reporting"
	"github.com/naijabook/platform/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting naijabook scheduling API",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	metricsHandler, schedMetrics := setupSchedulingMetrics()

	cal := calendar.BusinessCalendar{
		Weekend:  cfg.WeekendDays,
		Holidays: calendar.NigerianHolidays{},
	}

	catalogStore := catalog.NewStore(pool)
	hoursSource := bootstrap.BuildHoursSource(redisClient, catalogStore, cfg.BusinessHoursCacheTTL)

	bookingStore := booking.NewStore(pool, booking.UnassignedPolicy(cfg.UnassignedPolicy))
	bookingService := booking.NewService(bookingStore, catalogStore, hoursSource, cal, cfg.DefaultTimezone, schedMetrics, logger)
	expander := recurrence.NewExpander(bookingService, schedMetrics, logger)

	engine := availability.NewEngine(bookingStore, catalogStore, hoursSource, cal, cfg.DefaultTimezone, schedMetrics, logger).
		WithDefaultStep(time.Duration(cfg.SlotStepMinutes) * time.Minute).
		WithSearchWindow(cfg.SearchWindowDays)

	// Reporting runs aggregate scans over database/sql so the pgx pool stays
	// dedicated to booking traffic.
	reportingStore := reporting.NewStore(stdlib.OpenDBFromPool(pool), logger)

	startOutboxDeliverer(ctx, cfg, pool, schedMetrics, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		Availability:       handlers.NewAvailabilityHandler(engine, logger),
		Bookings:           handlers.NewBookingHandler(bookingService, expander, logger),
		Analytics:          handlers.NewAnalyticsHandler(reportingStore, logger),
		Health:             handlers.Health(pool),
		MetricsHandler:     metricsHandler,
		TenantJWTSecret:    cfg.TenantJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// connectPostgresPool opens and pings a pgx pool, returning nil when the URL
// is blank or the database is unreachable.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// setupSchedulingMetrics registers the booking metrics on a dedicated
// registry and returns the scrape handler alongside them.
func setupSchedulingMetrics() (http.Handler, *metrics.SchedulingMetrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewSchedulingMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// startOutboxDeliverer drains booking events to SQS for the notification and
// calendar-sync workers. Without a queue URL events stay in the outbox table.
func startOutboxDeliverer(ctx context.Context, cfg *appconfig.Config, pool *pgxpool.Pool, m *metrics.SchedulingMetrics, logger *logging.Logger) {
	if strings.TrimSpace(cfg.SchedulingEventsQueue) == "" {
		logger.Info("scheduling events queue not configured; outbox delivery disabled")
		return
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config; outbox delivery disabled", "error", err)
		return
	}
	publisher := events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SchedulingEventsQueue)
	deliverer := events.NewDeliverer(events.NewOutboxStore(pool), publisher, logger).
		WithInterval(cfg.OutboxDeliverInterval).
		WithMetrics(m)

	go deliverer.Start(ctx)
	logger.Info("outbox delivery enabled", "queue", cfg.SchedulingEventsQueue)
}
