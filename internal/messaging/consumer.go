package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/metrics"
)

// retryCountHeader tracks how often a message has been redelivered to a
// queue. It lives on the message so the count survives broker restarts.
const retryCountHeader = "x-retry-count"

// HandlerFunc processes one consumed message body. Handlers must be
// idempotent: the consumer acknowledges only after the handler returns nil,
// so a crash mid-handler leads to redelivery.
type HandlerFunc func(ctx context.Context, body []byte) error

// Binding ties a service-owned durable queue to a route and a handler.
type Binding struct {
	Queue   string
	Route   Route
	Handler HandlerFunc
}

// Consumer runs a service's bindings with at-least-once delivery: manual
// ack after successful handling, bounded redelivery via a retry header, and
// a per-queue dead-letter queue once retries are exhausted.
type Consumer struct {
	conn            *Conn
	logger          zerolog.Logger
	prefetch        int
	maxRedeliveries int
}

func NewConsumer(conn *Conn, cfg config.BrokerConfig, logger zerolog.Logger) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	return &Consumer{
		conn:            conn,
		logger:          logger.With().Str("component", "consumer").Logger(),
		prefetch:        prefetch,
		maxRedeliveries: cfg.MaxRedeliveries,
	}
}

// Run consumes every binding until ctx is canceled. Each queue gets its own
// channel so one slow handler cannot stall the others, and a lost channel
// is re-established after the reconnect delay.
func (c *Consumer) Run(ctx context.Context, bindings []Binding) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, binding := range bindings {
		group.Go(func() error {
			return c.consumeLoop(ctx, binding)
		})
	}
	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *Consumer) consumeLoop(ctx context.Context, binding Binding) error {
	logger := c.logger.With().Str("queue", binding.Queue).Logger()
	for {
		if err := c.consumeOnce(ctx, binding, logger); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn().Err(err).Msg("consumer channel lost, reconnecting")
		}
		if err := c.conn.WaitForReconnect(ctx); err != nil {
			return err
		}
	}
}

func (c *Consumer) consumeOnce(ctx context.Context, binding Binding, logger zerolog.Logger) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := DeclareQueue(ch, binding.Queue, binding.Route); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(DeadLetterQueue(binding.Queue), true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare dead-letter queue: %w", err)
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(binding.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", binding.Queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, ch, binding, delivery, logger)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, ch *amqp.Channel, binding Binding, delivery amqp.Delivery, logger zerolog.Logger) {
	err := binding.Handler(ctx, delivery.Body)
	if err == nil {
		if ackErr := delivery.Ack(false); ackErr != nil {
			logger.Error().Err(ackErr).Msg("ack failed")
		}
		metrics.MessagesConsumed.WithLabelValues(binding.Queue, "ok").Inc()
		return
	}

	attempt := RetryCount(delivery.Headers)
	if attempt+1 >= c.maxRedeliveries {
		logger.Error().Err(err).Int("attempts", attempt+1).Msg("retries exhausted, dead-lettering message")
		c.redirect(ctx, ch, DeadLetterQueue(binding.Queue), delivery, attempt+1)
		metrics.MessagesConsumed.WithLabelValues(binding.Queue, "dead_lettered").Inc()
		return
	}

	logger.Warn().Err(err).Int("attempt", attempt+1).Msg("handler failed, requeueing message")
	c.redirect(ctx, ch, binding.Queue, delivery, attempt+1)
	metrics.MessagesConsumed.WithLabelValues(binding.Queue, "retried").Inc()
}

// redirect republishes the delivery to a queue through the default exchange
// with an incremented retry count, then acknowledges the original. If the
// republish fails the original is nacked back onto the queue instead, so
// the message is never dropped.
func (c *Consumer) redirect(ctx context.Context, ch *amqp.Channel, queue string, delivery amqp.Delivery, attempts int) {
	headers := amqp.Table{}
	for key, value := range delivery.Headers {
		headers[key] = value
	}
	headers[retryCountHeader] = int32(attempts)

	err := ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  delivery.ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    delivery.MessageId,
		Timestamp:    time.Now().UTC(),
		Headers:      headers,
		Body:         delivery.Body,
	})
	if err != nil {
		c.logger.Error().Err(err).Str("queue", queue).Msg("redirect publish failed, requeueing delivery")
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}

// RetryCount reads the redelivery counter from message headers. Missing or
// malformed headers count as zero.
func RetryCount(headers amqp.Table) int {
	value, ok := headers[retryCountHeader]
	if !ok {
		return 0
	}
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// DeadLetterQueue names the dead-letter companion of a queue.
func DeadLetterQueue(queue string) string {
	return queue + ".dlq"
}
