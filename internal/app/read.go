package app

import (
	"context"

	"github.com/photo-prestiges/server/internal/api"
	"github.com/photo-prestiges/server/internal/api/handlers"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/replica"
)

// NewReadApp builds the read service: a query-only contest listing fed by
// every contest event.
func NewReadApp(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg, "read")
	if err != nil {
		return nil, err
	}

	handler := api.NewReadRouter(c.apiBase(), handlers.NewReadHandler(c.repo.Contests(), cfg.Environment))

	bindings := []Binding{
		{Queue: "contest_queue", Route: messaging.ContestCreated,
			Handler: replica.ContestCreated(c.repo.Contests(), c.logger)},
		{Queue: "update_contest_queue", Route: messaging.ContestUpdated,
			Handler: replica.ContestUpdated(c.repo.Contests(), c.logger)},
		{Queue: "read_delete_contest_queue", Route: messaging.ContestDeleted,
			Handler: replica.ContestDeleted(c.repo.Contests(), nil, c.logger)},
		{Queue: "read_status_contest_queue", Route: messaging.ContestStatusChanged,
			Handler: replica.ContestStatusChanged(c.repo.Contests(), c.logger)},
		{Queue: "read_contest_votes_queue", Route: messaging.ContestVotesUpdated,
			Handler: replica.ContestVotesUpdated(c.repo.Contests(), c.logger)},
	}

	return c.newApp("read", handler, c.consumerRunner(bindings)), nil
}
