package replica

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/messaging"
)

// SubmissionCreated inserts a submission snapshot.
func SubmissionCreated(repo submissions.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.SubmissionMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if err := repo.Upsert(ctx, message.ToDomain()); err != nil {
			return err
		}
		logger.Debug().Str("submission_id", message.ID).Msg("submission replica created")
		return nil
	}
}

// SubmissionUpdated copies the image from the snapshot onto the replica.
func SubmissionUpdated(repo submissions.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.SubmissionMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if message.Image == "" {
			return nil
		}
		if _, err := repo.SetImage(ctx, message.ID, message.Image); err != nil {
			if errors.Is(err, submissions.ErrNotFound) {
				logger.Warn().Str("submission_id", message.ID).Msg("submission missing from replica, skipping update")
				return nil
			}
			return err
		}
		return nil
	}
}

// SubmissionDeleted removes the replica row; deleting an already absent
// submission is a no-op so replays are safe.
func SubmissionDeleted(repo submissions.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.SubmissionMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if err := repo.Delete(ctx, message.ID); err != nil {
			return err
		}
		logger.Debug().Str("submission_id", message.ID).Msg("submission replica deleted")
		return nil
	}
}

// SubmissionScoreUpdated writes the computed score back onto the owning
// service's copy.
func SubmissionScoreUpdated(repo submissions.Repository, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		var message messaging.SubmissionMessage
		if err := messaging.Decode(body, &message); err != nil {
			return err
		}
		if _, err := repo.SetScore(ctx, message.ID, message.Score); err != nil {
			if errors.Is(err, submissions.ErrNotFound) {
				logger.Warn().Str("submission_id", message.ID).Msg("submission missing, skipping score update")
				return nil
			}
			return err
		}
		return nil
	}
}
