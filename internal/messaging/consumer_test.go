package messaging

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
)

func TestRetryCount(t *testing.T) {
	require.Equal(t, 0, RetryCount(nil))
	require.Equal(t, 0, RetryCount(amqp.Table{}))
	require.Equal(t, 2, RetryCount(amqp.Table{"x-retry-count": int32(2)}))
	require.Equal(t, 3, RetryCount(amqp.Table{"x-retry-count": int64(3)}))
	require.Equal(t, 4, RetryCount(amqp.Table{"x-retry-count": 4}))
	require.Equal(t, 5, RetryCount(amqp.Table{"x-retry-count": float64(5)}))
	require.Equal(t, 0, RetryCount(amqp.Table{"x-retry-count": "many"}))
}

func TestDeadLetterQueue(t *testing.T) {
	require.Equal(t, "score_service_submission_update_queue.dlq", DeadLetterQueue("score_service_submission_update_queue"))
}

func TestRoutesMatchLegacyTopology(t *testing.T) {
	// The exchange names and routing keys are the wire contract with the
	// deployed services; renaming one silently orphans its consumers.
	require.Equal(t, Route{"user_exchange", "user.created"}, UserCreated)
	require.Equal(t, Route{"contest_exchange", "contest.created"}, ContestCreated)
	require.Equal(t, Route{"update_contest_exchange", "contest.updated"}, ContestUpdated)
	require.Equal(t, Route{"contest_delete_exchange", "contest.deleted"}, ContestDeleted)
	require.Equal(t, Route{"contest_status_exchange", "contest_status_changed"}, ContestStatusChanged)
	require.Equal(t, Route{"contest_voting_exchange", "contest.votesUpdated"}, ContestVotesUpdated)
	require.Equal(t, Route{"submission_exchange", "submission.created"}, SubmissionCreated)
	require.Equal(t, Route{"update_submission_exchange", "submission.updated"}, SubmissionUpdated)
	require.Equal(t, Route{"submission_deleted_exchange", "submission.deleted"}, SubmissionDeleted)
	require.Equal(t, Route{"submission_score_exchange", "submission.scoreUpdated"}, SubmissionScoreUpdated)
}
