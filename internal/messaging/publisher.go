package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/metrics"
)

// Publisher sends durable messages to direct exchanges. It is safe for
// concurrent use; a broken channel is replaced on the next publish.
type Publisher struct {
	conn   *Conn
	logger zerolog.Logger

	mu       sync.Mutex
	ch       *amqp.Channel
	declared map[string]struct{}
}

func NewPublisher(conn *Conn, logger zerolog.Logger) *Publisher {
	return &Publisher{
		conn:     conn,
		logger:   logger.With().Str("component", "publisher").Logger(),
		declared: make(map[string]struct{}),
	}
}

// Publish sends body to the route's exchange with the persistent delivery
// flag set. The exchange is declared on first use per channel.
func (p *Publisher) Publish(ctx context.Context, route Route, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.publishLocked(ctx, route, body)
	if err == nil {
		metrics.MessagesPublished.WithLabelValues(route.Exchange, route.RoutingKey).Inc()
		return nil
	}

	// One retry on a fresh channel covers the common broker-restart case.
	p.dropChannelLocked()
	if retryErr := p.publishLocked(ctx, route, body); retryErr == nil {
		metrics.MessagesPublished.WithLabelValues(route.Exchange, route.RoutingKey).Inc()
		return nil
	}
	return fmt.Errorf("publish %s/%s: %w", route.Exchange, route.RoutingKey, err)
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropChannelLocked()
}

func (p *Publisher) publishLocked(ctx context.Context, route Route, body []byte) error {
	ch, err := p.channelLocked()
	if err != nil {
		return err
	}
	if _, ok := p.declared[route.Exchange]; !ok {
		if err := DeclareRoute(ch, route); err != nil {
			return err
		}
		p.declared[route.Exchange] = struct{}{}
	}
	return ch.PublishWithContext(ctx, route.Exchange, route.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (p *Publisher) channelLocked() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, err
	}
	p.ch = ch
	p.declared = make(map[string]struct{})
	return ch, nil
}

func (p *Publisher) dropChannelLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	p.declared = make(map[string]struct{})
}
