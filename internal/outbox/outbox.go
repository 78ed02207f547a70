// Package outbox implements the transactional outbox: mutating operations
// append their event intents in the same database transaction as the entity
// write, and a relay drains the table to the broker afterwards. Publishing
// is therefore at-least-once and never blocks the request path.
package outbox

import (
	"context"
	"time"

	"github.com/photo-prestiges/server/internal/messaging"
)

// Message is one stored publish intent.
type Message struct {
	ID          int64
	Exchange    string
	RoutingKey  string
	Body        []byte
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (m Message) Route() messaging.Route {
	return messaging.Route{Exchange: m.Exchange, RoutingKey: m.RoutingKey}
}

// Store persists publish intents. Append must run on the same transaction
// as the entity mutation it belongs to.
type Store interface {
	Append(ctx context.Context, exchange, routingKey string, body []byte) error
	// ListUnpublished returns the oldest unpublished messages, in insert order.
	ListUnpublished(ctx context.Context, limit int) ([]Message, error)
	MarkPublished(ctx context.Context, ids []int64) error
}

// Append encodes payload and stores it as a publish intent for route.
func Append(ctx context.Context, store Store, route messaging.Route, payload any) error {
	body, err := messaging.Encode(payload)
	if err != nil {
		return err
	}
	return store.Append(ctx, route.Exchange, route.RoutingKey, body)
}
