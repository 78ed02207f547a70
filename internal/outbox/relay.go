package outbox

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/metrics"
)

// Publisher is the broker-facing side of the relay.
type Publisher interface {
	Publish(ctx context.Context, route messaging.Route, body []byte) error
}

// Relay periodically drains unpublished outbox rows to the broker. A failed
// publish leaves the row unpublished and stops the batch; the next tick
// picks it up again, preserving insert order per service.
type Relay struct {
	store     Store
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    zerolog.Logger
}

func NewRelay(store Store, publisher Publisher, cfg config.OutboxConfig, logger zerolog.Logger) *Relay {
	interval := cfg.RelayInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger.With().Str("component", "outbox_relay").Logger(),
	}
}

// Run drains the outbox until ctx is canceled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.DrainOnce(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn().Err(err).Msg("outbox drain failed")
			}
		}
	}
}

// DrainOnce publishes one batch of unpublished messages.
func (r *Relay) DrainOnce(ctx context.Context) error {
	messages, err := r.store.ListUnpublished(ctx, r.batchSize)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	published := make([]int64, 0, len(messages))
	for _, message := range messages {
		if err := r.publisher.Publish(ctx, message.Route(), message.Body); err != nil {
			// Stop at the first failure to keep per-service ordering.
			r.logger.Warn().Err(err).
				Str("exchange", message.Exchange).
				Str("routing_key", message.RoutingKey).
				Msg("publish failed, message stays in outbox")
			break
		}
		published = append(published, message.ID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := r.store.MarkPublished(ctx, published); err != nil {
		// Marking can fail after a successful publish; the rows will be
		// published again. Consumers are idempotent, so duplicates are safe.
		return err
	}
	metrics.OutboxRelayed.Add(float64(len(published)))
	return nil
}
