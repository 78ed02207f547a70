// Package replica holds the consumer handlers that keep a service's local
// entity copies current. Replicas are updated only through these handlers;
// no replica is ever authoritative for writes it did not originate.
//
// Every handler is idempotent: the broker delivers at least once, so a
// replayed event must land in the same state. Entities missing from the
// local replica (deleted mid-flight) are logged and skipped, never retried.
// Undecodable bodies are returned as errors so they end up dead-lettered
// instead of silently dropped.
package replica

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/messaging"
)

// ContestCreated inserts a contest snapshot, replacing any stale copy.
func ContestCreated(repo contests.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.ContestMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if err := repo.Upsert(ctx, message.ToDomain()); err != nil {
			return err
		}
		logger.Debug().Str("contest_id", message.ID).Msg("contest replica created")
		return nil
	}
}

// ContestUpdated patches only the fields present in the payload so the
// replica keeps fields the partial update does not carry.
func ContestUpdated(repo contests.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.ContestPatchMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if _, err := repo.ApplyPatch(ctx, message.ID, message.ToPatch()); err != nil {
			if errors.Is(err, contests.ErrNotFound) {
				logger.Warn().Str("contest_id", message.ID).Msg("contest missing from replica, skipping update")
				return nil
			}
			return err
		}
		return nil
	}
}

// ContestDeleted removes the contest and cascades to its submissions.
func ContestDeleted(repo contests.Repository, subs submissions.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.ContestMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if subs != nil {
			if err := subs.DeleteByContest(ctx, message.ID); err != nil {
				return err
			}
		}
		if err := repo.Delete(ctx, message.ID); err != nil {
			return err
		}
		logger.Debug().Str("contest_id", message.ID).Msg("contest replica deleted")
		return nil
	}
}

// ContestStatusChanged closes the local copy. Closing is monotonic, so a
// redelivered closure is a no-op. Status can only transition open->closed;
// a payload claiming otherwise is ignored.
func ContestStatusChanged(repo contests.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.ContestStatusMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if message.Status {
			logger.Warn().Str("contest_id", message.ContestID).Msg("ignoring attempt to reopen contest")
			return nil
		}
		if _, err := repo.Close(ctx, message.ContestID); err != nil {
			if errors.Is(err, contests.ErrNotFound) {
				logger.Warn().Str("contest_id", message.ContestID).Msg("contest missing from replica, skipping close")
				return nil
			}
			return err
		}
		return nil
	}
}

// ContestVotesUpdated copies the thumb counters from the full snapshot.
func ContestVotesUpdated(repo contests.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.ContestMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		existing, err := repo.Get(ctx, message.ID)
		if err != nil {
			if errors.Is(err, contests.ErrNotFound) {
				logger.Warn().Str("contest_id", message.ID).Msg("contest missing from replica, skipping votes update")
				return nil
			}
			return err
		}
		existing.ThumbsUp = message.ThumbsUp
		existing.ThumbsDown = message.ThumbsDown
		return repo.Upsert(ctx, *existing)
	}
}
