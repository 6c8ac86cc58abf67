// The outbox relay drains scheduling events to SQS as a standalone process,
// for deployments that scale event delivery separately from the API. Delivery
// is at-least-once either way; queue consumers deduplicate by event id.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/naijabook/platform/cmd/mainconfig"
	appconfig "github.com/naijabook/platform/internal/config"
	"github.com/naijabook/platform/internal/events"
	"github.com/naijabook/platform/pkg/logging"
)

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" || strings.TrimSpace(cfg.SchedulingEventsQueue) == "" {
		logger.Error("outbox relay requires DATABASE_URL and SCHEDULING_EVENTS_QUEUE_URL")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	publisher := events.NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.SchedulingEventsQueue)
	deliverer := events.NewDeliverer(events.NewOutboxStore(pool), publisher, logger).
		WithInterval(cfg.OutboxDeliverInterval)

	logger.Info("outbox relay started",
		"queue", cfg.SchedulingEventsQueue,
		"interval", cfg.OutboxDeliverInterval.String(),
	)
	deliverer.Start(ctx)
	logger.Info("outbox relay shutting down")
}
