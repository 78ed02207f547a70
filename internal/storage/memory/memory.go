// Package memory holds an in-memory Repository used by unit tests for the
// choreography: replica handlers, owning-service operations and the outbox
// relay all run against it without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/outbox"
	"github.com/photo-prestiges/server/internal/storage"
)

type Repository struct {
	mu           sync.Mutex
	contests     map[string]contests.Contest
	submissions  map[string]submissions.Submission
	users        map[string]users.User
	outboxRows   []outbox.Message
	nextOutboxID int64
}

func NewRepository() *Repository {
	return &Repository{
		contests:     make(map[string]contests.Contest),
		submissions:  make(map[string]submissions.Submission),
		users:        make(map[string]users.User),
		nextOutboxID: 1,
	}
}

func (r *Repository) Contests() contests.Repository       { return &contestRepo{r} }
func (r *Repository) Submissions() submissions.Repository { return &submissionRepo{r} }
func (r *Repository) Users() users.Repository             { return &userRepo{r} }
func (r *Repository) Outbox() outbox.Store                { return &outboxStore{r} }

// WithTx is not transactional in memory; tests that need rollback behavior
// belong against postgres.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return fn(ctx, r)
}

type contestRepo struct{ r *Repository }

func (s *contestRepo) Upsert(_ context.Context, contest contests.Contest) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.contests[contest.ID] = contest
	return nil
}

func (s *contestRepo) Get(_ context.Context, id string) (*contests.Contest, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	contest, ok := s.r.contests[id]
	if !ok {
		return nil, contests.ErrNotFound
	}
	return &contest, nil
}

func (s *contestRepo) List(_ context.Context, filters contests.Filters, pagination contests.Pagination) ([]contests.Contest, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()

	result := make([]contests.Contest, 0, len(s.r.contests))
	for _, contest := range s.r.contests {
		if filters.StatusOpen != nil && contest.StatusOpen != *filters.StatusOpen {
			continue
		}
		result = append(result, contest)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	if pagination.Offset > 0 {
		if pagination.Offset >= len(result) {
			return nil, nil
		}
		result = result[pagination.Offset:]
	}
	if pagination.Limit > 0 && len(result) > pagination.Limit {
		result = result[:pagination.Limit]
	}
	return result, nil
}

func (s *contestRepo) ApplyPatch(_ context.Context, id string, patch contests.Patch) (*contests.Contest, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	contest, ok := s.r.contests[id]
	if !ok {
		return nil, contests.ErrNotFound
	}
	patch.Apply(&contest)
	contest.UpdatedAt = time.Now().UTC()
	s.r.contests[id] = contest
	return &contest, nil
}

func (s *contestRepo) AddVote(_ context.Context, id string, vote contests.Vote) (*contests.Contest, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	contest, ok := s.r.contests[id]
	if !ok {
		return nil, contests.ErrNotFound
	}
	if vote == contests.VoteUp {
		contest.ThumbsUp++
	} else {
		contest.ThumbsDown++
	}
	s.r.contests[id] = contest
	return &contest, nil
}

func (s *contestRepo) Close(_ context.Context, id string) (bool, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	contest, ok := s.r.contests[id]
	if !ok {
		return false, contests.ErrNotFound
	}
	if !contest.StatusOpen {
		return false, nil
	}
	contest.StatusOpen = false
	s.r.contests[id] = contest
	return true, nil
}

func (s *contestRepo) Delete(_ context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	delete(s.r.contests, id)
	return nil
}

func (s *contestRepo) ListExpired(_ context.Context, now time.Time) ([]contests.Contest, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var expired []contests.Contest
	for _, contest := range s.r.contests {
		if contest.Expired(now) {
			expired = append(expired, contest)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].ID < expired[j].ID })
	return expired, nil
}

type submissionRepo struct{ r *Repository }

func (s *submissionRepo) Upsert(_ context.Context, submission submissions.Submission) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	// Mirrors the postgres UNIQUE (contest_id, participant_id) constraint.
	for _, existing := range s.r.submissions {
		if existing.ID != submission.ID &&
			existing.ContestID == submission.ContestID &&
			existing.ParticipantID == submission.ParticipantID {
			return submissions.ErrDuplicate
		}
	}
	s.r.submissions[submission.ID] = submission
	return nil
}

func (s *submissionRepo) Get(_ context.Context, id string) (*submissions.Submission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	submission, ok := s.r.submissions[id]
	if !ok {
		return nil, submissions.ErrNotFound
	}
	return &submission, nil
}

func (s *submissionRepo) GetByContestAndParticipant(_ context.Context, contestID, participantID string) (*submissions.Submission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, submission := range s.r.submissions {
		if submission.ContestID == contestID && submission.ParticipantID == participantID {
			return &submission, nil
		}
	}
	return nil, submissions.ErrNotFound
}

func (s *submissionRepo) ListByContest(_ context.Context, contestID string) ([]submissions.Submission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var result []submissions.Submission
	for _, submission := range s.r.submissions {
		if submission.ContestID == contestID {
			result = append(result, submission)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *submissionRepo) SetImage(_ context.Context, id, image string) (*submissions.Submission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	submission, ok := s.r.submissions[id]
	if !ok {
		return nil, submissions.ErrNotFound
	}
	submission.Image = image
	submission.UpdatedAt = time.Now().UTC()
	s.r.submissions[id] = submission
	return &submission, nil
}

func (s *submissionRepo) SetScore(_ context.Context, id string, score float64) (*submissions.Submission, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	submission, ok := s.r.submissions[id]
	if !ok {
		return nil, submissions.ErrNotFound
	}
	submission.Score = score
	submission.UpdatedAt = time.Now().UTC()
	s.r.submissions[id] = submission
	return &submission, nil
}

func (s *submissionRepo) Delete(_ context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	delete(s.r.submissions, id)
	return nil
}

func (s *submissionRepo) DeleteByContest(_ context.Context, contestID string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for id, submission := range s.r.submissions {
		if submission.ContestID == contestID {
			delete(s.r.submissions, id)
		}
	}
	return nil
}

type userRepo struct{ r *Repository }

func (s *userRepo) Upsert(_ context.Context, user users.User) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	// Mirrors the postgres UNIQUE (email) constraint.
	for _, existing := range s.r.users {
		if existing.ID != user.ID && existing.Email == user.Email {
			return users.ErrDuplicateEmail
		}
	}
	s.r.users[user.ID] = user
	return nil
}

func (s *userRepo) Get(_ context.Context, id string) (*users.User, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	user, ok := s.r.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	return &user, nil
}

func (s *userRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, user := range s.r.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *userRepo) GetByEmail(_ context.Context, email string) (*users.User, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	for _, user := range s.r.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, users.ErrNotFound
}

func (s *userRepo) Delete(_ context.Context, id string) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	delete(s.r.users, id)
	return nil
}

type outboxStore struct{ r *Repository }

func (s *outboxStore) Append(_ context.Context, exchange, routingKey string, body []byte) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	s.r.outboxRows = append(s.r.outboxRows, outbox.Message{
		ID:         s.r.nextOutboxID,
		Exchange:   exchange,
		RoutingKey: routingKey,
		Body:       append([]byte(nil), body...),
		CreatedAt:  time.Now().UTC(),
	})
	s.r.nextOutboxID++
	return nil
}

func (s *outboxStore) ListUnpublished(_ context.Context, limit int) ([]outbox.Message, error) {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	var result []outbox.Message
	for _, row := range s.r.outboxRows {
		if row.PublishedAt != nil {
			continue
		}
		result = append(result, row)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func (s *outboxStore) MarkPublished(_ context.Context, ids []int64) error {
	s.r.mu.Lock()
	defer s.r.mu.Unlock()
	now := time.Now().UTC()
	for i := range s.r.outboxRows {
		for _, id := range ids {
			if s.r.outboxRows[i].ID == id {
				s.r.outboxRows[i].PublishedAt = &now
			}
		}
	}
	return nil
}
