// Package mail wires the mail service's consumer handlers: every handler
// first feeds the local replica, then decides whether a message warrants
// an email. Sending happens inside the handler so a failed send is
// redelivered by the broker; duplicate mails after a crash are accepted.
package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/email"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/replica"
	"github.com/photo-prestiges/server/internal/storage"
)

// UserCreated stores the user replica and sends the registration
// confirmation mail to the new account.
func UserCreated(repo users.Repository, mailer *email.Service, logger zerolog.Logger) messaging.HandlerFunc {
	replicate := replica.UserCreated(repo, logger)
	return func(ctx context.Context, body []byte) error {
		if err := replicate(ctx, body); err != nil {
			return err
		}
		var msg messaging.UserMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return nil
		}
		if err := mailer.SendRegistrationConfirmation(ctx, msg.Email, msg.Username); err != nil {
			logger.Error().Err(err).Str("user_id", msg.ID).Msg("registration mail failed")
			return err
		}
		return nil
	}
}

// ContestStatusChanged updates the contest replica and, on closure, mails
// every participant their final score.
func ContestStatusChanged(repo storage.Repository, mailer *email.Service, logger zerolog.Logger) messaging.HandlerFunc {
	replicate := replica.ContestStatusChanged(repo.Contests(), logger)
	return func(ctx context.Context, body []byte) error {
		if err := replicate(ctx, body); err != nil {
			return err
		}
		var msg messaging.ContestStatusMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return nil
		}
		if msg.Status {
			return nil
		}
		return sendScoreMails(ctx, repo, mailer, logger, msg.ContestID)
	}
}

func sendScoreMails(ctx context.Context, repo storage.Repository, mailer *email.Service, logger zerolog.Logger, contestID string) error {
	contest, err := repo.Contests().Get(ctx, contestID)
	if errors.Is(err, contests.ErrNotFound) {
		logger.Warn().Str("contest_id", contestID).Msg("closed contest missing from replica, skipping score mails")
		return nil
	}
	if err != nil {
		return err
	}

	subs, err := repo.Submissions().ListByContest(ctx, contestID)
	if err != nil {
		return err
	}

	var failed int
	for _, sub := range subs {
		participant, err := repo.Users().Get(ctx, sub.ParticipantID)
		if errors.Is(err, users.ErrNotFound) {
			logger.Warn().Str("participant_id", sub.ParticipantID).Msg("participant missing from replica, skipping score mail")
			continue
		}
		if err != nil {
			return err
		}
		if err := mailer.SendScoreNotification(ctx, participant.Email, participant.Username, contest.Place, sub.Score); err != nil {
			logger.Error().Err(err).
				Str("participant_id", sub.ParticipantID).
				Str("contest_id", contestID).
				Msg("score mail failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d score mails failed for contest %s", failed, len(subs), contestID)
	}
	return nil
}
