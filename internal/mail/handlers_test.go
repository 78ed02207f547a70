package mail

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/email"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/storage/memory"
)

func newTestMailer(t *testing.T) *email.Service {
	t.Helper()
	svc, err := email.NewService(config.EmailConfig{Enabled: false}, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestUserCreatedReplicatesAndMails(t *testing.T) {
	repo := memory.NewRepository()
	handler := UserCreated(repo.Users(), newTestMailer(t), zerolog.Nop())

	body, err := messaging.Encode(messaging.UserMessage{
		ID:       "user-1",
		Username: "ada",
		Email:    "ada@example.com",
		Role:     string(users.RoleParticipant),
	})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), body))

	stored, err := repo.Users().Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "ada", stored.Username)
}

func TestUserCreatedRejectsBadRecipient(t *testing.T) {
	repo := memory.NewRepository()
	handler := UserCreated(repo.Users(), newTestMailer(t), zerolog.Nop())

	body, err := messaging.Encode(messaging.UserMessage{
		ID:       "user-2",
		Username: "bob",
		Email:    "not-an-address",
		Role:     string(users.RoleParticipant),
	})
	require.NoError(t, err)
	require.Error(t, handler(context.Background(), body))

	// The replica write still happened; redelivery re-upserts it.
	_, err = repo.Users().Get(context.Background(), "user-2")
	require.NoError(t, err)
}

func TestContestStatusChangedMailsParticipantsOnClosure(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()

	require.NoError(t, repo.Users().Upsert(ctx, users.User{
		ID: "user-1", Username: "ada", Email: "ada@example.com", Role: users.RoleParticipant,
	}))
	require.NoError(t, repo.Contests().Upsert(ctx, contests.Contest{
		ID: "contest-1", OwnerID: "owner-1", Place: "Dam Square",
		StartTime: time.Now().Add(-2 * time.Hour), EndTime: time.Now().Add(-time.Hour),
		StatusOpen: true,
	}))
	require.NoError(t, repo.Submissions().Upsert(ctx, submissions.Submission{
		ID: "sub-1", ContestID: "contest-1", ParticipantID: "user-1", Image: "photo.jpg", Score: 77.5,
	}))

	handler := ContestStatusChanged(repo, newTestMailer(t), zerolog.Nop())
	body, err := messaging.Encode(messaging.ContestStatusMessage{ContestID: "contest-1", Status: false})
	require.NoError(t, err)
	require.NoError(t, handler(ctx, body))

	closed, err := repo.Contests().Get(ctx, "contest-1")
	require.NoError(t, err)
	require.False(t, closed.StatusOpen)
}

func TestContestStatusChangedSkipsMissingContest(t *testing.T) {
	repo := memory.NewRepository()
	handler := ContestStatusChanged(repo, newTestMailer(t), zerolog.Nop())

	body, err := messaging.Encode(messaging.ContestStatusMessage{ContestID: "nope", Status: false})
	require.NoError(t, err)
	require.NoError(t, handler(context.Background(), body))
}

func TestContestStatusChangedSkipsMissingParticipant(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewRepository()

	require.NoError(t, repo.Contests().Upsert(ctx, contests.Contest{
		ID: "contest-1", OwnerID: "owner-1", Place: "Vondelpark",
		StartTime: time.Now().Add(-2 * time.Hour), EndTime: time.Now().Add(-time.Hour),
		StatusOpen: true,
	}))
	require.NoError(t, repo.Submissions().Upsert(ctx, submissions.Submission{
		ID: "sub-1", ContestID: "contest-1", ParticipantID: "ghost", Image: "photo.jpg", Score: 10,
	}))

	handler := ContestStatusChanged(repo, newTestMailer(t), zerolog.Nop())
	body, err := messaging.Encode(messaging.ContestStatusMessage{ContestID: "contest-1", Status: false})
	require.NoError(t, err)
	require.NoError(t, handler(ctx, body))
}
