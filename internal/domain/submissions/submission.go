package submissions

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("submission not found")
	// ErrDuplicate is returned when a participant already has a submission
	// for the contest. Exactly one submission per (contest, participant)
	// pair may exist.
	ErrDuplicate = errors.New("participant already registered for this contest")
)

// Submission is owned by the contest service, with replicas in the mail and
// score services.
type Submission struct {
	ID            string
	ContestID     string
	ParticipantID string
	Image         string
	Score         float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Repository interface {
	Upsert(ctx context.Context, submission Submission) error
	Get(ctx context.Context, id string) (*Submission, error)
	GetByContestAndParticipant(ctx context.Context, contestID, participantID string) (*Submission, error)
	ListByContest(ctx context.Context, contestID string) ([]Submission, error)
	SetImage(ctx context.Context, id, image string) (*Submission, error)
	SetScore(ctx context.Context, id string, score float64) (*Submission, error)
	Delete(ctx context.Context, id string) error
	// DeleteByContest removes every submission of a contest; used for the
	// cascade when a contest is deleted.
	DeleteByContest(ctx context.Context, contestID string) error
}
