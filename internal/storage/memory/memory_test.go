package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/domain/users"
)

func TestSubmissionUpsertEnforcesOnePerContestAndParticipant(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	first := submissions.Submission{ID: "sub-1", ContestID: "contest-1", ParticipantID: "user-1"}
	require.NoError(t, repo.Submissions().Upsert(ctx, first))

	// A different submission for the same pair is a conflict.
	second := submissions.Submission{ID: "sub-2", ContestID: "contest-1", ParticipantID: "user-1"}
	require.ErrorIs(t, repo.Submissions().Upsert(ctx, second), submissions.ErrDuplicate)

	// Replaying the same submission stays an upsert.
	first.Image = "photo.jpg"
	require.NoError(t, repo.Submissions().Upsert(ctx, first))

	// Same participant in another contest is fine.
	other := submissions.Submission{ID: "sub-3", ContestID: "contest-2", ParticipantID: "user-1"}
	require.NoError(t, repo.Submissions().Upsert(ctx, other))
}

func TestUserUpsertEnforcesUniqueEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	first := users.User{ID: "user-1", Username: "ada", Email: "ada@example.com", Role: users.RoleParticipant}
	require.NoError(t, repo.Users().Upsert(ctx, first))

	second := users.User{ID: "user-2", Username: "ada2", Email: "ada@example.com", Role: users.RoleParticipant}
	require.ErrorIs(t, repo.Users().Upsert(ctx, second), users.ErrDuplicateEmail)

	// Replaying the same user stays an upsert.
	first.Username = "ada-renamed"
	require.NoError(t, repo.Users().Upsert(ctx, first))

	stored, err := repo.Users().Get(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "ada-renamed", stored.Username)
}
