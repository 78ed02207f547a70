package contests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateEndTimeWindow(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	require.ErrorIs(t, ValidateEndTime(now.Add(30*time.Minute), now), ErrEndTimeTooSoon)
	require.ErrorIs(t, ValidateEndTime(now.Add(-time.Hour), now), ErrEndTimeTooSoon)
	require.NoError(t, ValidateEndTime(now.Add(time.Hour), now))
	require.NoError(t, ValidateEndTime(now.Add(48*time.Hour), now))
	require.NoError(t, ValidateEndTime(now.Add(MaxDuration), now))
	require.ErrorIs(t, ValidateEndTime(now.Add(MaxDuration+time.Minute), now), ErrEndTimeTooLate)
}

func TestCloseIsMonotonic(t *testing.T) {
	contest := Contest{ID: "01HQZX3Y4K6F7G8H9J0K1M2N3P", StatusOpen: true}

	require.True(t, contest.Close())
	require.False(t, contest.StatusOpen)

	// Closing twice is a no-op.
	require.False(t, contest.Close())
	require.False(t, contest.StatusOpen)
}

func TestExpired(t *testing.T) {
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)
	open := Contest{StatusOpen: true, EndTime: now.Add(-time.Second)}
	notYet := Contest{StatusOpen: true, EndTime: now.Add(time.Second)}
	closed := Contest{StatusOpen: false, EndTime: now.Add(-time.Hour)}

	require.True(t, open.Expired(now))
	require.False(t, notYet.Expired(now))
	require.False(t, closed.Expired(now))
}

func TestPatchAppliesOnlyPresentFields(t *testing.T) {
	contest := Contest{Place: "Utrecht", Image: "https://cdn.example/target.jpg"}

	place := "Amsterdam"
	Patch{Place: &place}.Apply(&contest)

	require.Equal(t, "Amsterdam", contest.Place)
	require.Equal(t, "https://cdn.example/target.jpg", contest.Image)

	image := "https://cdn.example/new-target.jpg"
	Patch{Image: &image}.Apply(&contest)
	require.Equal(t, "Amsterdam", contest.Place)
	require.Equal(t, "https://cdn.example/new-target.jpg", contest.Image)
}

func TestParseVote(t *testing.T) {
	vote, err := ParseVote("up")
	require.NoError(t, err)
	require.Equal(t, VoteUp, vote)

	vote, err = ParseVote("down")
	require.NoError(t, err)
	require.Equal(t, VoteDown, vote)

	_, err = ParseVote("sideways")
	require.ErrorIs(t, err, ErrInvalidVote)
}
