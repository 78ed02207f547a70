package replica

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/messaging"
)

// UserCreated inserts a read-only user copy.
func UserCreated(repo users.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.UserMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if err := repo.Upsert(ctx, message.ToDomain()); err != nil {
			return err
		}
		logger.Debug().Str("user_id", message.ID).Msg("user replica created")
		return nil
	}
}
