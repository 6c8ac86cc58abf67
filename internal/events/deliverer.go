package events

import (
	"context"
	"time"

	"github.com/naijabook/platform/internal/observability/metrics"
	"github.com/naijabook/platform/pkg/logging"
)

// DeliveryHandler pushes one outbox entry to its destination. Delivery is
// at-least-once: a handler may see the same entry again after a crash, so
// consumers dedupe on the envelope event id.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

const (
	defaultBatchSize = 25
	defaultInterval  = 2 * time.Second
)

// Deliverer drains the outbox on an interval, forwarding entries in creation
// order and settling each one only after its handler succeeds.
type Deliverer struct {
	store     *OutboxStore
	handler   DeliveryHandler
	logger    *logging.Logger
	metrics   *metrics.SchedulingMetrics
	batchSize int32
	interval  time.Duration
}

func NewDeliverer(store *OutboxStore, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:     store,
		handler:   handler,
		logger:    logger.Component("outbox"),
		batchSize: defaultBatchSize,
		interval:  defaultInterval,
	}
}

func (d *Deliverer) WithBatchSize(n int32) *Deliverer {
	if n > 0 {
		d.batchSize = n
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

func (d *Deliverer) WithMetrics(m *metrics.SchedulingMetrics) *Deliverer {
	d.metrics = m
	return d
}

// Start blocks until ctx is cancelled. The first pass runs immediately so a
// restart flushes any backlog without waiting out an interval.
func (d *Deliverer) Start(ctx context.Context) {
	d.logger.Info("outbox deliverer started",
		"interval", d.interval.String(),
		"batch_size", d.batchSize,
	)
	d.drain(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox deliverer stopped")
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Deliverer) drain(ctx context.Context) {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("failed to fetch pending outbox entries", "error", err)
		return
	}
	for _, entry := range entries {
		d.deliver(ctx, entry)
	}
}

func (d *Deliverer) deliver(ctx context.Context, entry OutboxEntry) {
	if err := d.handler.Handle(ctx, entry); err != nil {
		d.metrics.ObserveOutboxDelivery("failed")
		d.logger.Error("outbox delivery failed",
			"event_id", entry.ID.String(),
			"event_type", entry.Type,
			"error", err,
		)
		return
	}
	settled, err := d.store.MarkDelivered(ctx, entry.ID)
	if err != nil {
		// The entry redelivers next pass; the handler dedupes on event id.
		d.metrics.ObserveOutboxDelivery("settle_failed")
		d.logger.Error("failed to mark outbox delivered",
			"event_id", entry.ID.String(),
			"error", err,
		)
		return
	}
	if !settled {
		// Another relay instance settled it first.
		return
	}
	d.metrics.ObserveOutboxDelivery("delivered")
	d.logger.Info("outbox delivered",
		"event_id", entry.ID.String(),
		"event_type", entry.Type,
	)
}
