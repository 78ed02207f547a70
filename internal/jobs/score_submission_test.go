package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/ids"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/scoring"
	"github.com/photo-prestiges/server/internal/storage/memory"
)

type fixedTagger struct {
	tags map[string][]scoring.Tag
	err  error
}

func (f *fixedTagger) Tags(_ context.Context, imageURL string) ([]scoring.Tag, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tags[imageURL], nil
}

func scoreJob(id string) *river.Job[ScoreSubmissionArgs] {
	return &river.Job[ScoreSubmissionArgs]{
		JobRow: &rivertype.JobRow{Attempt: 1},
		Args:   ScoreSubmissionArgs{SubmissionID: id},
	}
}

func seedScoringFixture(t *testing.T, repo *memory.Repository) (contests.Contest, submissions.Submission) {
	t.Helper()
	start := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	contest := contests.Contest{
		ID:          ids.NewULID(),
		OwnerID:     ids.NewULID(),
		Description: "most dramatic sky",
		Place:       "Dam Square",
		Image:       "https://img/target.jpg",
		StartTime:   start,
		EndTime:     start.Add(10 * time.Hour),
		StatusOpen:  true,
	}
	require.NoError(t, repo.Contests().Upsert(context.Background(), contest))

	submission := submissions.Submission{
		ID:            ids.NewULID(),
		ContestID:     contest.ID,
		ParticipantID: ids.NewULID(),
		Image:         "https://img/sub.jpg",
		CreatedAt:     start.Add(time.Hour),
		UpdatedAt:     start.Add(5 * time.Hour),
	}
	require.NoError(t, repo.Submissions().Upsert(context.Background(), submission))
	return contest, submission
}

func TestScoreSubmissionWorker_ScoresAndPublishes(t *testing.T) {
	repo := memory.NewRepository()
	_, submission := seedScoringFixture(t, repo)

	tagger := &fixedTagger{tags: map[string][]scoring.Tag{
		"https://img/sub.jpg":    {{Label: "mountain", Confidence: 90}},
		"https://img/target.jpg": {{Label: "mountain", Confidence: 70}},
	}}
	worker := ScoreSubmissionWorker{
		Repo:   repo,
		Scorer: scoring.NewScorer(tagger, scoring.DefaultMinConfidence),
	}

	require.NoError(t, worker.Work(context.Background(), scoreJob(submission.ID)))

	// match 80, upload halfway through -> time 50 -> 0.9*80 + 0.1*50.
	got, err := repo.Submissions().Get(context.Background(), submission.ID)
	require.NoError(t, err)
	assert.Equal(t, 77.0, got.Score)

	pending, err := repo.Outbox().ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, messaging.SubmissionScoreUpdated, pending[0].Route())

	var msg messaging.SubmissionMessage
	require.NoError(t, messaging.Decode(pending[0].Body, &msg))
	assert.Equal(t, submission.ID, msg.ID)
	assert.Equal(t, 77.0, msg.Score)
}

func TestScoreSubmissionWorker_DuplicateImageRejected(t *testing.T) {
	repo := memory.NewRepository()
	_, submission := seedScoringFixture(t, repo)

	same := []scoring.Tag{{Label: "mountain", Confidence: 90}}
	tagger := &fixedTagger{tags: map[string][]scoring.Tag{
		"https://img/sub.jpg":    same,
		"https://img/target.jpg": same,
	}}
	worker := ScoreSubmissionWorker{
		Repo:   repo,
		Scorer: scoring.NewScorer(tagger, scoring.DefaultMinConfidence),
	}

	// Rejection is final: no error, no score, no event.
	require.NoError(t, worker.Work(context.Background(), scoreJob(submission.ID)))

	got, err := repo.Submissions().Get(context.Background(), submission.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Score)

	pending, err := repo.Outbox().ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestScoreSubmissionWorker_TaggingFailureIsRetryable(t *testing.T) {
	repo := memory.NewRepository()
	_, submission := seedScoringFixture(t, repo)

	worker := ScoreSubmissionWorker{
		Repo:   repo,
		Scorer: scoring.NewScorer(&fixedTagger{err: assert.AnError}, scoring.DefaultMinConfidence),
	}

	err := worker.Work(context.Background(), scoreJob(submission.ID))
	assert.ErrorIs(t, err, assert.AnError)

	pending, perr := repo.Outbox().ListUnpublished(context.Background(), 10)
	require.NoError(t, perr)
	assert.Empty(t, pending)
}

func TestScoreSubmissionWorker_MissingSubmissionSkipped(t *testing.T) {
	worker := ScoreSubmissionWorker{
		Repo:   memory.NewRepository(),
		Scorer: scoring.NewScorer(&fixedTagger{}, scoring.DefaultMinConfidence),
	}

	assert.NoError(t, worker.Work(context.Background(), scoreJob(ids.NewULID())))
}

func TestScoreSubmissionWorker_MissingContestRetries(t *testing.T) {
	repo := memory.NewRepository()
	submission := submissions.Submission{
		ID:            ids.NewULID(),
		ContestID:     ids.NewULID(),
		ParticipantID: ids.NewULID(),
		Image:         "https://img/sub.jpg",
	}
	require.NoError(t, repo.Submissions().Upsert(context.Background(), submission))

	worker := ScoreSubmissionWorker{
		Repo:   repo,
		Scorer: scoring.NewScorer(&fixedTagger{}, scoring.DefaultMinConfidence),
	}

	assert.Error(t, worker.Work(context.Background(), scoreJob(submission.ID)),
		"contest replica lag must surface as a retryable error")
}

func TestScoreSubmissionWorker_NilRepo(t *testing.T) {
	worker := ScoreSubmissionWorker{}

	job := &river.Job[ScoreSubmissionArgs]{
		JobRow: &rivertype.JobRow{Attempt: 1},
		Args:   ScoreSubmissionArgs{SubmissionID: "x"},
	}
	assert.Error(t, worker.Work(context.Background(), job))
}

func TestRetryPolicy_NextRetryBacksOff(t *testing.T) {
	policy := NewRetryPolicy()
	attemptedAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	first := policy.NextRetry(&rivertype.JobRow{Kind: JobKindScoreSubmission, Attempt: 1, AttemptedAt: &attemptedAt})
	assert.Equal(t, attemptedAt.Add(30*time.Second), first)

	second := policy.NextRetry(&rivertype.JobRow{Kind: JobKindScoreSubmission, Attempt: 2, AttemptedAt: &attemptedAt})
	assert.Equal(t, attemptedAt.Add(time.Minute), second)
}
