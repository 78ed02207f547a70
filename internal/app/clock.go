package app

import (
	"context"

	"github.com/photo-prestiges/server/internal/api"
	"github.com/photo-prestiges/server/internal/api/handlers"
	"github.com/photo-prestiges/server/internal/clock"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/replica"
)

// NewClockApp builds the clock service. It replicates contests, sweeps for
// expired ones, and is the sole emitter of contest_status_changed. Created
// and updated events run through the sweeper watch so a contest that is
// already past its end time closes immediately instead of waiting a tick.
func NewClockApp(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg, "clock")
	if err != nil {
		return nil, err
	}

	sweeper := clock.NewSweeper(c.repo, cfg.Clock.SweepInterval, c.logger)
	handler := api.NewClockRouter(c.apiBase(), handlers.NewClockHandler(c.repo.Contests(), cfg.Environment))

	bindings := []Binding{
		{Queue: "contest_clock_created_queue", Route: messaging.ContestCreated,
			Handler: sweeper.WatchContestEvents(replica.ContestCreated(c.repo.Contests(), c.logger))},
		{Queue: "update_contest_clock_queue", Route: messaging.ContestUpdated,
			Handler: sweeper.WatchContestEvents(replica.ContestUpdated(c.repo.Contests(), c.logger))},
		{Queue: "clock_delete_contest_queue", Route: messaging.ContestDeleted,
			Handler: replica.ContestDeleted(c.repo.Contests(), c.repo.Submissions(), c.logger)},
		{Queue: "clock_contest_votes_queue", Route: messaging.ContestVotesUpdated,
			Handler: replica.ContestVotesUpdated(c.repo.Contests(), c.logger)},
	}

	return c.newApp("clock", handler, c.relayRunner(), c.consumerRunner(bindings), sweeper.Run), nil
}
