package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/outbox"
	"github.com/photo-prestiges/server/internal/scoring"
	"github.com/photo-prestiges/server/internal/storage"
)

// ScoreSubmissionArgs defines the job arguments for scoring a submission.
type ScoreSubmissionArgs struct {
	SubmissionID string `json:"submission_id"`
}

func (ScoreSubmissionArgs) Kind() string { return JobKindScoreSubmission }

// ScoreSubmissionWorker scores a submission against its contest's target
// image and publishes the result.
//
// The worker tolerates the replica lagging behind: a submission whose
// contest has not arrived yet fails with a retryable error, while a
// submission that no longer exists is skipped. Tagging API failures are
// retried with exponential backoff (30s, 1m, ...); a submission identical
// to the target is rejected for good without persisting anything.
type ScoreSubmissionWorker struct {
	river.WorkerDefaults[ScoreSubmissionArgs]
	Repo   storage.Repository
	Scorer *scoring.Scorer
	Logger *slog.Logger
}

func (ScoreSubmissionWorker) Kind() string { return JobKindScoreSubmission }

func (w ScoreSubmissionWorker) Work(ctx context.Context, job *river.Job[ScoreSubmissionArgs]) error {
	if w.Repo == nil {
		return fmt.Errorf("repository not configured")
	}
	if w.Scorer == nil {
		return fmt.Errorf("scorer not configured")
	}

	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}

	submissionID := job.Args.SubmissionID
	if submissionID == "" {
		return fmt.Errorf("submission_id is required")
	}

	logger.Info("starting submission scoring job",
		"submission_id", submissionID,
		"attempt", job.Attempt,
	)

	submission, err := w.Repo.Submissions().Get(ctx, submissionID)
	if errors.Is(err, submissions.ErrNotFound) {
		logger.Warn("submission no longer exists, skipping scoring",
			"submission_id", submissionID,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("query submission %s: %w", submissionID, err)
	}

	if submission.Image == "" {
		logger.Warn("submission has no image yet, skipping scoring",
			"submission_id", submissionID,
		)
		return nil
	}

	contest, err := w.Repo.Contests().Get(ctx, submission.ContestID)
	if errors.Is(err, contests.ErrNotFound) {
		// Contest event may not have arrived yet; retry later.
		return fmt.Errorf("contest %s not replicated yet for submission %s", submission.ContestID, submissionID)
	}
	if err != nil {
		return fmt.Errorf("query contest %s: %w", submission.ContestID, err)
	}

	// The upload time anchors the timeliness bonus so retries always
	// compute the same score.
	score, err := w.Scorer.Score(ctx, submission.Image, contest.Image, contest.StartTime, contest.EndTime, submission.UpdatedAt)
	if errors.Is(err, scoring.ErrDuplicateImage) {
		logger.Warn("submission rejected as exact duplicate of target image",
			"submission_id", submissionID,
			"contest_id", contest.ID,
		)
		return nil
	}
	if errors.Is(err, scoring.ErrNoTargetImage) {
		logger.Warn("contest has no target image, skipping scoring",
			"submission_id", submissionID,
			"contest_id", contest.ID,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("score submission %s: %w", submissionID, err)
	}

	err = w.Repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		scored, err := tx.Submissions().SetScore(ctx, submissionID, score)
		if err != nil {
			return err
		}
		msg := messaging.NewSubmissionMessage(*scored)
		return outbox.Append(ctx, tx.Outbox(), messaging.SubmissionScoreUpdated, msg)
	})
	if errors.Is(err, submissions.ErrNotFound) {
		logger.Warn("submission deleted while scoring, dropping result",
			"submission_id", submissionID,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist score for submission %s: %w", submissionID, err)
	}

	logger.Info("submission scoring job completed",
		"submission_id", submissionID,
		"contest_id", contest.ID,
		"score", score,
	)

	return nil
}
