package postgres

import (
	"context"
	"fmt"

	"github.com/photo-prestiges/server/internal/outbox"
)

func (s *OutboxStore) Append(ctx context.Context, exchange, routingKey string, body []byte) error {
	_, err := s.queryer().Exec(ctx, `
INSERT INTO outbox (exchange, routing_key, body) VALUES ($1, $2, $3)
`, exchange, routingKey, body)
	if err != nil {
		return fmt.Errorf("append outbox: %w", err)
	}
	return nil
}

func (s *OutboxStore) ListUnpublished(ctx context.Context, limit int) ([]outbox.Message, error) {
	rows, err := s.queryer().Query(ctx, `
SELECT id, exchange, routing_key, body, created_at, published_at
  FROM outbox
 WHERE published_at IS NULL
 ORDER BY id
 LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unpublished outbox: %w", err)
	}
	defer rows.Close()

	var result []outbox.Message
	for rows.Next() {
		var message outbox.Message
		if err := rows.Scan(
			&message.ID,
			&message.Exchange,
			&message.RoutingKey,
			&message.Body,
			&message.CreatedAt,
			&message.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		result = append(result, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan outbox: %w", err)
	}
	return result, nil
}

func (s *OutboxStore) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.queryer().Exec(ctx, `
UPDATE outbox SET published_at = now() WHERE id = ANY($1)
`, ids)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

func (s *OutboxStore) queryer() queryer {
	if s.tx != nil {
		return s.tx
	}
	return s.pool
}
