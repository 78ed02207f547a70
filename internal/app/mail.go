package app

import (
	"context"

	"github.com/photo-prestiges/server/internal/api"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/email"
	"github.com/photo-prestiges/server/internal/mail"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/replica"
)

// NewMailApp builds the mail service. It replicates users, contests and
// submissions, welcomes new users, and mails every participant their
// score when a contest closes. It serves only health probes over HTTP.
func NewMailApp(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg, "mail")
	if err != nil {
		return nil, err
	}

	mailer, err := email.NewService(cfg.Email, c.logger)
	if err != nil {
		return nil, err
	}

	handler := api.NewProbeRouter(c.apiBase())

	bindings := []Binding{
		{Queue: "mail_user_created_queue", Route: messaging.UserCreated,
			Handler: mail.UserCreated(c.repo.Users(), mailer, c.logger)},
		{Queue: "mail_contest_created_queue", Route: messaging.ContestCreated,
			Handler: replica.ContestCreated(c.repo.Contests(), c.logger)},
		{Queue: "mail_update_contest_queue", Route: messaging.ContestUpdated,
			Handler: replica.ContestUpdated(c.repo.Contests(), c.logger)},
		{Queue: "mail_delete_contest_queue", Route: messaging.ContestDeleted,
			Handler: replica.ContestDeleted(c.repo.Contests(), c.repo.Submissions(), c.logger)},
		{Queue: "mail_status_contest_queue", Route: messaging.ContestStatusChanged,
			Handler: mail.ContestStatusChanged(c.repo, mailer, c.logger)},
		{Queue: "mail_contest_votes_queue", Route: messaging.ContestVotesUpdated,
			Handler: replica.ContestVotesUpdated(c.repo.Contests(), c.logger)},
		{Queue: "mail_submission_created_queue", Route: messaging.SubmissionCreated,
			Handler: replica.SubmissionCreated(c.repo.Submissions(), c.logger)},
		{Queue: "mail_update_submission_queue", Route: messaging.SubmissionUpdated,
			Handler: replica.SubmissionUpdated(c.repo.Submissions(), c.logger)},
		{Queue: "mail_delete_submission_queue", Route: messaging.SubmissionDeleted,
			Handler: replica.SubmissionDeleted(c.repo.Submissions(), c.logger)},
		{Queue: "mail_update_submission_score_queue", Route: messaging.SubmissionScoreUpdated,
			Handler: replica.SubmissionScoreUpdated(c.repo.Submissions(), c.logger)},
	}

	return c.newApp("mail", handler, c.consumerRunner(bindings)), nil
}
