package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/config"
)

// Conn owns the broker connection for one service process. Publishers and
// consumers receive it by injection; nothing reaches for ambient globals.
// Channel callers get a fresh channel and the connection is re-dialed
// transparently after a broker failure.
type Conn struct {
	url            string
	reconnectDelay time.Duration
	logger         zerolog.Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	closed bool
}

func Dial(cfg config.BrokerConfig, logger zerolog.Logger) (*Conn, error) {
	c := &Conn{
		url:            cfg.URL,
		reconnectDelay: cfg.ReconnectDelay,
		logger:         logger.With().Str("component", "broker").Logger(),
	}
	if c.reconnectDelay <= 0 {
		c.reconnectDelay = 5 * time.Second
	}
	if _, err := c.connection(); err != nil {
		return nil, err
	}
	return c, nil
}

// Channel returns a new channel, dialing the broker first if needed.
func (c *Conn) Channel() (*amqp.Channel, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	return ch, nil
}

// WaitForReconnect blocks for the configured delay or until ctx is done.
// Consumers call it between redial attempts.
func (c *Conn) WaitForReconnect(ctx context.Context) error {
	select {
	case <-time.After(c.reconnectDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}

func (c *Conn) connection() (*amqp.Connection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("broker connection closed")
	}
	if c.conn != nil && !c.conn.IsClosed() {
		return c.conn, nil
	}

	conn, err := amqp.Dial(c.url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	c.conn = conn
	c.logger.Info().Msg("broker connected")

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr := <-closed; amqpErr != nil {
			c.logger.Warn().Err(amqpErr).Msg("broker connection lost")
		}
	}()
	return conn, nil
}

// DeclareRoute asserts the durable direct exchange backing a route.
func DeclareRoute(ch *amqp.Channel, route Route) error {
	if err := ch.ExchangeDeclare(route.Exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", route.Exchange, err)
	}
	return nil
}

// DeclareQueue asserts a durable queue and binds it to the route.
func DeclareQueue(ch *amqp.Channel, queue string, route Route) error {
	if err := DeclareRoute(ch, route); err != nil {
		return err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(queue, route.RoutingKey, route.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s to %s: %w", queue, route.Exchange, err)
	}
	return nil
}
