package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/api"
	"github.com/photo-prestiges/server/internal/api/handlers"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/jobs"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/replica"
	"github.com/photo-prestiges/server/internal/scoring"
	"github.com/photo-prestiges/server/internal/scoring/imagga"
)

// NewScoreApp builds the score service. Scoring runs as river jobs so a
// tagging-API outage retries with backoff instead of dead-lettering the
// triggering event; submission.updated is the trigger, the legacy
// update-score endpoint just enqueues the same job.
func NewScoreApp(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg, "score")
	if err != nil {
		return nil, err
	}

	tagger := imagga.NewClient(cfg.Tagging.BaseURL, cfg.Tagging.APIKey, cfg.Tagging.APISecret,
		imagga.WithHTTPClient(&http.Client{Timeout: cfg.Tagging.Timeout}))
	scorer := scoring.NewScorer(tagger, cfg.Tagging.MinConfidence)

	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	workers := river.NewWorkers()
	river.AddWorker(workers, &jobs.ScoreSubmissionWorker{
		Repo:   c.repo,
		Scorer: scorer,
		Logger: slogLogger,
	})
	client, err := jobs.NewClient(c.pool, workers, slogLogger)
	if err != nil {
		return nil, err
	}
	enqueuer := &scoreEnqueuer{client: client}

	handler := api.NewScoreRouter(c.apiBase(), handlers.NewScoresHandler(enqueuer, cfg.Environment))

	bindings := []Binding{
		{Queue: "score_contest_created_queue", Route: messaging.ContestCreated,
			Handler: replica.ContestCreated(c.repo.Contests(), c.logger)},
		{Queue: "score_update_contest_queue", Route: messaging.ContestUpdated,
			Handler: replica.ContestUpdated(c.repo.Contests(), c.logger)},
		{Queue: "score_delete_contest_queue", Route: messaging.ContestDeleted,
			Handler: replica.ContestDeleted(c.repo.Contests(), c.repo.Submissions(), c.logger)},
		{Queue: "score_status_contest_queue", Route: messaging.ContestStatusChanged,
			Handler: replica.ContestStatusChanged(c.repo.Contests(), c.logger)},
		{Queue: "score_contest_votes_queue", Route: messaging.ContestVotesUpdated,
			Handler: replica.ContestVotesUpdated(c.repo.Contests(), c.logger)},
		{Queue: "score_submission_created_queue", Route: messaging.SubmissionCreated,
			Handler: replica.SubmissionCreated(c.repo.Submissions(), c.logger)},
		{Queue: "score_service_submission_update_queue", Route: messaging.SubmissionUpdated,
			Handler: enqueueOnUpdate(replica.SubmissionUpdated(c.repo.Submissions(), c.logger), enqueuer, c.logger)},
		{Queue: "score_delete_submission_queue", Route: messaging.SubmissionDeleted,
			Handler: replica.SubmissionDeleted(c.repo.Submissions(), c.logger)},
	}

	return c.newApp("score", handler,
		c.relayRunner(),
		c.consumerRunner(bindings),
		riverRunner(client),
	), nil
}

type scoreEnqueuer struct {
	client *river.Client[pgx.Tx]
}

func (e *scoreEnqueuer) EnqueueScore(ctx context.Context, submissionID string) error {
	opts := jobs.InsertOptsForKind(jobs.JobKindScoreSubmission)
	_, err := e.client.Insert(ctx, jobs.ScoreSubmissionArgs{SubmissionID: submissionID}, &opts)
	return err
}

// enqueueOnUpdate replicates the submission, then schedules it for
// scoring. The job reads from the replica, so replication must land first.
func enqueueOnUpdate(next messaging.HandlerFunc, enqueuer *scoreEnqueuer, logger zerolog.Logger) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		if err := next(ctx, body); err != nil {
			return err
		}
		var msg messaging.SubmissionMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return nil
		}
		if err := enqueuer.EnqueueScore(ctx, msg.ID); err != nil {
			logger.Error().Err(err).Str("submission_id", msg.ID).Msg("enqueue scoring failed")
			return err
		}
		return nil
	}
}

func riverRunner(client *river.Client[pgx.Tx]) Runner {
	return func(ctx context.Context) error {
		if err := client.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return client.Stop(stopCtx)
	}
}
