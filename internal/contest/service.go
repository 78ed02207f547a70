// Package contest implements the contest service's write side: contests,
// submissions and votes are mutated here, with every change recorded as an
// outbox event in the same transaction.
package contest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/ids"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/outbox"
	"github.com/photo-prestiges/server/internal/storage"
)

// Service owns contests and submissions.
type Service struct {
	repo   storage.Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo storage.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "contest").Logger(),
		now:    time.Now,
	}
}

// CreateContestInput carries the fields a target owner supplies when
// opening a contest. OwnerID and OwnerRole come from the gateway-verified
// token, not the request body.
type CreateContestInput struct {
	OwnerID     string
	OwnerRole   users.Role
	Description string
	Place       string
	Image       string
	EndTime     time.Time
}

// CreateContest opens a new contest. Only target owners may create one, and
// the end time must fall between one hour and two years from now. The end
// time window is checked at creation only; it is immutable afterwards.
func (s *Service) CreateContest(ctx context.Context, input CreateContestInput) (*contests.Contest, error) {
	if input.OwnerRole != users.RoleTargetOwner {
		return nil, contests.ErrWrongRole
	}

	now := s.now()
	if err := contests.ValidateEndTime(input.EndTime, now); err != nil {
		return nil, err
	}

	contest := contests.Contest{
		ID:          ids.NewULID(),
		OwnerID:     input.OwnerID,
		Description: input.Description,
		Place:       input.Place,
		Image:       input.Image,
		StartTime:   now,
		EndTime:     input.EndTime,
		StatusOpen:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		if err := tx.Contests().Upsert(ctx, contest); err != nil {
			return err
		}
		return outbox.Append(ctx, tx.Outbox(), messaging.ContestCreated, messaging.NewContestMessage(contest))
	})
	if err != nil {
		return nil, fmt.Errorf("create contest: %w", err)
	}

	s.logger.Info().Str("contest_id", contest.ID).Str("owner_id", contest.OwnerID).Msg("contest created")
	return &contest, nil
}

// UpdateContest patches the mutable contest fields (place, target image).
// Only the contest owner may update it.
func (s *Service) UpdateContest(ctx context.Context, contestID, requesterID string, patch contests.Patch) (*contests.Contest, error) {
	var updated *contests.Contest
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		current, err := tx.Contests().Get(ctx, contestID)
		if err != nil {
			return err
		}
		if current.OwnerID != requesterID {
			return contests.ErrNotOwner
		}

		updated, err = tx.Contests().ApplyPatch(ctx, contestID, patch)
		if err != nil {
			return err
		}

		msg := messaging.ContestPatchMessage{ID: contestID, Place: patch.Place, Image: patch.Image}
		return outbox.Append(ctx, tx.Outbox(), messaging.ContestUpdated, msg)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("contest_id", contestID).Msg("contest updated")
	return updated, nil
}

// DeleteContest removes a contest and all its submissions. Only the owner
// may delete it. The delete event carries the full contest snapshot so
// replicas can cascade the same way.
func (s *Service) DeleteContest(ctx context.Context, contestID, requesterID string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		current, err := tx.Contests().Get(ctx, contestID)
		if err != nil {
			return err
		}
		if current.OwnerID != requesterID {
			return contests.ErrNotOwner
		}

		if err := tx.Submissions().DeleteByContest(ctx, contestID); err != nil {
			return err
		}
		if err := tx.Contests().Delete(ctx, contestID); err != nil {
			return err
		}
		return outbox.Append(ctx, tx.Outbox(), messaging.ContestDeleted, messaging.NewContestMessage(*current))
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("contest_id", contestID).Msg("contest deleted")
	return nil
}

// Vote counts a thumbs up or down on a contest. Votes are unauthenticated
// beyond the gateway check and may be cast repeatedly.
func (s *Service) Vote(ctx context.Context, contestID string, vote contests.Vote) (*contests.Contest, error) {
	var updated *contests.Contest
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		var err error
		updated, err = tx.Contests().AddVote(ctx, contestID, vote)
		if err != nil {
			return err
		}
		return outbox.Append(ctx, tx.Outbox(), messaging.ContestVotesUpdated, messaging.NewContestMessage(*updated))
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RegisterSubmission enrolls a participant in an open contest. A
// participant can hold at most one submission per contest; the image is
// uploaded separately afterwards.
func (s *Service) RegisterSubmission(ctx context.Context, contestID, participantID string, role users.Role) (*submissions.Submission, error) {
	if role != users.RoleParticipant {
		return nil, contests.ErrWrongRole
	}

	now := s.now()
	submission := submissions.Submission{
		ID:            ids.NewULID(),
		ContestID:     contestID,
		ParticipantID: participantID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		contest, err := tx.Contests().Get(ctx, contestID)
		if err != nil {
			return err
		}
		if !contest.StatusOpen {
			return contests.ErrClosed
		}

		if err := tx.Submissions().Upsert(ctx, submission); err != nil {
			return err
		}
		return outbox.Append(ctx, tx.Outbox(), messaging.SubmissionCreated, messaging.NewSubmissionMessage(submission))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("submission_id", submission.ID).
		Str("contest_id", contestID).
		Str("participant_id", participantID).
		Msg("submission registered")
	return &submission, nil
}

// UpdateSubmission sets the participant's photo. Only the participant who
// registered the submission may upload to it, and only while the contest is
// still open.
func (s *Service) UpdateSubmission(ctx context.Context, submissionID, requesterID, image string) (*submissions.Submission, error) {
	var updated *submissions.Submission
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		current, err := tx.Submissions().Get(ctx, submissionID)
		if err != nil {
			return err
		}
		if current.ParticipantID != requesterID {
			return contests.ErrNotOwner
		}

		contest, err := tx.Contests().Get(ctx, current.ContestID)
		if err != nil {
			return err
		}
		if !contest.StatusOpen {
			return contests.ErrClosed
		}

		updated, err = tx.Submissions().SetImage(ctx, submissionID, image)
		if err != nil {
			return err
		}
		return outbox.Append(ctx, tx.Outbox(), messaging.SubmissionUpdated, messaging.NewSubmissionMessage(*updated))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("submission_id", submissionID).Msg("submission image updated")
	return updated, nil
}

// DeleteSubmission withdraws the requester's own submission.
func (s *Service) DeleteSubmission(ctx context.Context, submissionID, requesterID string) error {
	return s.deleteSubmission(ctx, submissionID, func(sub *submissions.Submission, _ *contests.Contest) error {
		if sub.ParticipantID != requesterID {
			return contests.ErrNotOwner
		}
		return nil
	})
}

// DeleteSubmissionAsOwner lets a contest owner remove any submission from
// their own contest.
func (s *Service) DeleteSubmissionAsOwner(ctx context.Context, submissionID, requesterID string) error {
	return s.deleteSubmission(ctx, submissionID, func(_ *submissions.Submission, contest *contests.Contest) error {
		if contest.OwnerID != requesterID {
			return contests.ErrNotOwner
		}
		return nil
	})
}

func (s *Service) deleteSubmission(ctx context.Context, submissionID string, authorize func(*submissions.Submission, *contests.Contest) error) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		current, err := tx.Submissions().Get(ctx, submissionID)
		if err != nil {
			return err
		}
		contest, err := tx.Contests().Get(ctx, current.ContestID)
		if err != nil {
			return err
		}
		if err := authorize(current, contest); err != nil {
			return err
		}

		if err := tx.Submissions().Delete(ctx, submissionID); err != nil {
			return err
		}
		return outbox.Append(ctx, tx.Outbox(), messaging.SubmissionDeleted, messaging.NewSubmissionMessage(*current))
	})
	if err != nil {
		return err
	}

	s.logger.Info().Str("submission_id", submissionID).Msg("submission deleted")
	return nil
}

// GetSubmission returns the requester's submission for a contest.
func (s *Service) GetSubmission(ctx context.Context, contestID, participantID string) (*submissions.Submission, error) {
	return s.repo.Submissions().GetByContestAndParticipant(ctx, contestID, participantID)
}

// ListSubmissions returns every submission of a contest; only the contest
// owner may list them.
func (s *Service) ListSubmissions(ctx context.Context, contestID, requesterID string) ([]submissions.Submission, error) {
	contest, err := s.repo.Contests().Get(ctx, contestID)
	if err != nil {
		return nil, err
	}
	if contest.OwnerID != requesterID {
		return nil, contests.ErrNotOwner
	}
	return s.repo.Submissions().ListByContest(ctx, contestID)
}
