package messaging

// Route identifies an event on the broker as an (exchange, routing key)
// pair. Exchanges are direct-routed and durable; every consuming service
// declares its own durable queue bound to the producer's exchange, so each
// consumer receives every message.
type Route struct {
	Exchange   string
	RoutingKey string
}

var (
	UserCreated            = Route{Exchange: "user_exchange", RoutingKey: "user.created"}
	ContestCreated         = Route{Exchange: "contest_exchange", RoutingKey: "contest.created"}
	ContestUpdated         = Route{Exchange: "update_contest_exchange", RoutingKey: "contest.updated"}
	ContestDeleted         = Route{Exchange: "contest_delete_exchange", RoutingKey: "contest.deleted"}
	ContestStatusChanged   = Route{Exchange: "contest_status_exchange", RoutingKey: "contest_status_changed"}
	ContestVotesUpdated    = Route{Exchange: "contest_voting_exchange", RoutingKey: "contest.votesUpdated"}
	SubmissionCreated      = Route{Exchange: "submission_exchange", RoutingKey: "submission.created"}
	SubmissionUpdated      = Route{Exchange: "update_submission_exchange", RoutingKey: "submission.updated"}
	SubmissionDeleted      = Route{Exchange: "submission_deleted_exchange", RoutingKey: "submission.deleted"}
	SubmissionScoreUpdated = Route{Exchange: "submission_score_exchange", RoutingKey: "submission.scoreUpdated"}
)
