package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/photo-prestiges/server/internal/domain/submissions"
)

const submissionColumns = `id, contest_id, participant_id, image, score, created_at, updated_at`

func (r *SubmissionRepository) Upsert(ctx context.Context, submission submissions.Submission) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO submissions (id, contest_id, participant_id, image, score)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE
   SET image = EXCLUDED.image,
       score = EXCLUDED.score,
       updated_at = now()
`, submission.ID, submission.ContestID, submission.ParticipantID, submission.Image, submission.Score)
	if err != nil {
		if isUniqueViolation(err) {
			return submissions.ErrDuplicate
		}
		return fmt.Errorf("upsert submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id string) (*submissions.Submission, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	submission, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submissions.ErrNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return submission, nil
}

func (r *SubmissionRepository) GetByContestAndParticipant(ctx context.Context, contestID, participantID string) (*submissions.Submission, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT `+submissionColumns+` FROM submissions
 WHERE contest_id = $1 AND participant_id = $2
`, contestID, participantID)
	submission, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submissions.ErrNotFound
		}
		return nil, fmt.Errorf("get submission by contest and participant: %w", err)
	}
	return submission, nil
}

func (r *SubmissionRepository) ListByContest(ctx context.Context, contestID string) ([]submissions.Submission, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+submissionColumns+` FROM submissions WHERE contest_id = $1 ORDER BY created_at, id
`, contestID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var result []submissions.Submission
	for rows.Next() {
		submission, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		result = append(result, *submission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan submissions: %w", err)
	}
	return result, nil
}

func (r *SubmissionRepository) SetImage(ctx context.Context, id, image string) (*submissions.Submission, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE submissions SET image = $2, updated_at = now() WHERE id = $1
RETURNING `+submissionColumns, id, image)
	submission, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submissions.ErrNotFound
		}
		return nil, fmt.Errorf("set submission image: %w", err)
	}
	return submission, nil
}

func (r *SubmissionRepository) SetScore(ctx context.Context, id string, score float64) (*submissions.Submission, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE submissions SET score = $2, updated_at = now() WHERE id = $1
RETURNING `+submissionColumns, id, score)
	submission, err := scanSubmission(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, submissions.ErrNotFound
		}
		return nil, fmt.Errorf("set submission score: %w", err)
	}
	return submission, nil
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) DeleteByContest(ctx context.Context, contestID string) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM submissions WHERE contest_id = $1`, contestID); err != nil {
		return fmt.Errorf("delete submissions by contest: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanSubmission(row pgx.Row) (*submissions.Submission, error) {
	var submission submissions.Submission
	err := row.Scan(
		&submission.ID,
		&submission.ContestID,
		&submission.ParticipantID,
		&submission.Image,
		&submission.Score,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
