package app

import (
	"context"

	"github.com/photo-prestiges/server/internal/api"
	"github.com/photo-prestiges/server/internal/api/handlers"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/contest"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/replica"
)

// NewContestApp builds the contest service: the owning side of contests
// and submissions, plus replicas of users (for referential checks) and of
// the status and score events other services emit about its entities.
func NewContestApp(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg, "contest")
	if err != nil {
		return nil, err
	}

	service := contest.NewService(c.repo, c.logger)
	handler := api.NewContestRouter(c.apiBase(), handlers.NewContestsHandler(service, cfg.Environment))

	bindings := []Binding{
		{Queue: "contest_service_queue", Route: messaging.UserCreated,
			Handler: replica.UserCreated(c.repo.Users(), c.logger)},
		{Queue: "contest_status_contest_queue", Route: messaging.ContestStatusChanged,
			Handler: replica.ContestStatusChanged(c.repo.Contests(), c.logger)},
		{Queue: "contest_score_updated_queue", Route: messaging.SubmissionScoreUpdated,
			Handler: replica.SubmissionScoreUpdated(c.repo.Submissions(), c.logger)},
	}

	return c.newApp("contest", handler, c.relayRunner(), c.consumerRunner(bindings)), nil
}
