package clock

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/ids"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/replica"
	"github.com/photo-prestiges/server/internal/storage/memory"
)

func seedContest(t *testing.T, repo *memory.Repository, endTime time.Time, open bool) contests.Contest {
	t.Helper()
	contest := contests.Contest{
		ID:          ids.NewULID(),
		OwnerID:     ids.NewULID(),
		Description: "find the weirdest statue",
		Place:       "Dam Square",
		StartTime:   endTime.Add(-2 * time.Hour),
		EndTime:     endTime,
		StatusOpen:  open,
	}
	require.NoError(t, repo.Contests().Upsert(context.Background(), contest))
	return contest
}

func TestSweepOnce_ClosesExpiredAndEmitsStatus(t *testing.T) {
	repo := memory.NewRepository()
	start := time.Now()
	expired := seedContest(t, repo, start.Add(2*time.Hour), true)
	stillOpen := seedContest(t, repo, start.Add(3*time.Hour), true)

	sweeper := NewSweeper(repo, time.Minute, zerolog.Nop())
	sweeper.now = func() time.Time { return start.Add(2*time.Hour + time.Second) }

	closed, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	got, err := repo.Contests().Get(context.Background(), expired.ID)
	require.NoError(t, err)
	assert.False(t, got.StatusOpen)

	got, err = repo.Contests().Get(context.Background(), stillOpen.ID)
	require.NoError(t, err)
	assert.True(t, got.StatusOpen)

	pending, err := repo.Outbox().ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, messaging.ContestStatusChanged, pending[0].Route())

	var status messaging.ContestStatusMessage
	require.NoError(t, messaging.Decode(pending[0].Body, &status))
	assert.Equal(t, expired.ID, status.ContestID)
	assert.False(t, status.Status)
}

func TestSweepOnce_AlreadyClosedEmitsNothing(t *testing.T) {
	repo := memory.NewRepository()
	start := time.Now()
	contest := seedContest(t, repo, start.Add(time.Hour), false)

	sweeper := NewSweeper(repo, time.Minute, zerolog.Nop())
	sweeper.now = func() time.Time { return start.Add(2 * time.Hour) }

	closed, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, closed, "closed contests are not expired")

	// Sweeping twice after a manual close stays quiet too.
	_, err = repo.Contests().Close(context.Background(), contest.ID)
	require.NoError(t, err)
	_, err = sweeper.SweepOnce(context.Background())
	require.NoError(t, err)

	pending, err := repo.Outbox().ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestCloseNow_MissingContestSkipped(t *testing.T) {
	repo := memory.NewRepository()
	sweeper := NewSweeper(repo, time.Minute, zerolog.Nop())

	assert.NoError(t, sweeper.CloseNow(context.Background(), ids.NewULID()))
}

func TestWatchContestEvents_ClosesLateArrivingContest(t *testing.T) {
	repo := memory.NewRepository()
	sweeper := NewSweeper(repo, time.Minute, zerolog.Nop())

	now := time.Now()
	sweeper.now = func() time.Time { return now }

	// A created event for a contest that already ended, e.g. replayed after
	// downtime, closes immediately instead of waiting for the next sweep.
	contest := contests.Contest{
		ID:          ids.NewULID(),
		OwnerID:     ids.NewULID(),
		Description: "old contest",
		StartTime:   now.Add(-3 * time.Hour),
		EndTime:     now.Add(-time.Hour),
		StatusOpen:  true,
	}
	body, err := messaging.Encode(messaging.NewContestMessage(contest))
	require.NoError(t, err)

	handler := sweeper.WatchContestEvents(replica.ContestCreated(repo.Contests(), zerolog.Nop()))
	require.NoError(t, handler(context.Background(), body))

	got, err := repo.Contests().Get(context.Background(), contest.ID)
	require.NoError(t, err)
	assert.False(t, got.StatusOpen)

	pending, err := repo.Outbox().ListUnpublished(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, messaging.ContestStatusChanged, pending[0].Route())
}
