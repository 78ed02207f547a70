package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/photo-prestiges/server/internal/domain/contests"
)

const contestColumns = `id, owner_id, description, place, image, start_time, end_time, status_open, thumbs_up, thumbs_down, created_at, updated_at`

func (r *ContestRepository) Upsert(ctx context.Context, contest contests.Contest) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO contests (id, owner_id, description, place, image, start_time, end_time, status_open, thumbs_up, thumbs_down)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE
   SET owner_id = EXCLUDED.owner_id,
       description = EXCLUDED.description,
       place = EXCLUDED.place,
       image = EXCLUDED.image,
       start_time = EXCLUDED.start_time,
       end_time = EXCLUDED.end_time,
       status_open = EXCLUDED.status_open,
       thumbs_up = EXCLUDED.thumbs_up,
       thumbs_down = EXCLUDED.thumbs_down,
       updated_at = now()
`, contest.ID, contest.OwnerID, contest.Description, contest.Place, contest.Image,
		contest.StartTime, contest.EndTime, contest.StatusOpen, contest.ThumbsUp, contest.ThumbsDown)
	if err != nil {
		return fmt.Errorf("upsert contest: %w", err)
	}
	return nil
}

func (r *ContestRepository) Get(ctx context.Context, id string) (*contests.Contest, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+contestColumns+` FROM contests WHERE id = $1`, id)
	contest, err := scanContest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contests.ErrNotFound
		}
		return nil, fmt.Errorf("get contest: %w", err)
	}
	return contest, nil
}

func (r *ContestRepository) List(ctx context.Context, filters contests.Filters, pagination contests.Pagination) ([]contests.Contest, error) {
	query := `SELECT ` + contestColumns + ` FROM contests`
	args := []any{}
	if filters.StatusOpen != nil {
		query += ` WHERE status_open = $1`
		args = append(args, *filters.StatusOpen)
	}
	query += ` ORDER BY created_at DESC, id`
	if pagination.Limit > 0 {
		args = append(args, pagination.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if pagination.Offset > 0 {
		args = append(args, pagination.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.queryer().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contests: %w", err)
	}
	defer rows.Close()
	return scanContests(rows)
}

func (r *ContestRepository) ApplyPatch(ctx context.Context, id string, patch contests.Patch) (*contests.Contest, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE contests
   SET place = COALESCE($2, place),
       image = COALESCE($3, image),
       updated_at = now()
 WHERE id = $1
RETURNING `+contestColumns, id, patch.Place, patch.Image)
	contest, err := scanContest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contests.ErrNotFound
		}
		return nil, fmt.Errorf("patch contest: %w", err)
	}
	return contest, nil
}

func (r *ContestRepository) AddVote(ctx context.Context, id string, vote contests.Vote) (*contests.Contest, error) {
	column := "thumbs_down"
	if vote == contests.VoteUp {
		column = "thumbs_up"
	}
	row := r.queryer().QueryRow(ctx, `
UPDATE contests
   SET `+column+` = `+column+` + 1,
       updated_at = now()
 WHERE id = $1
RETURNING `+contestColumns, id)
	contest, err := scanContest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contests.ErrNotFound
		}
		return nil, fmt.Errorf("add vote: %w", err)
	}
	return contest, nil
}

func (r *ContestRepository) Close(ctx context.Context, id string) (bool, error) {
	// The status_open guard makes the open->closed transition monotonic:
	// a duplicate close attempt touches zero rows.
	tag, err := r.queryer().Exec(ctx, `
UPDATE contests SET status_open = false, updated_at = now()
 WHERE id = $1 AND status_open = true
`, id)
	if err != nil {
		return false, fmt.Errorf("close contest: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	if err := r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM contests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("close contest: %w", err)
	}
	if !exists {
		return false, contests.ErrNotFound
	}
	return false, nil
}

func (r *ContestRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.queryer().Exec(ctx, `DELETE FROM contests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete contest: %w", err)
	}
	return nil
}

func (r *ContestRepository) ListExpired(ctx context.Context, now time.Time) ([]contests.Contest, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT `+contestColumns+` FROM contests
 WHERE status_open = true AND end_time < $1
 ORDER BY end_time
`, now)
	if err != nil {
		return nil, fmt.Errorf("list expired contests: %w", err)
	}
	defer rows.Close()
	return scanContests(rows)
}

func (r *ContestRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func scanContest(row pgx.Row) (*contests.Contest, error) {
	var contest contests.Contest
	err := row.Scan(
		&contest.ID,
		&contest.OwnerID,
		&contest.Description,
		&contest.Place,
		&contest.Image,
		&contest.StartTime,
		&contest.EndTime,
		&contest.StatusOpen,
		&contest.ThumbsUp,
		&contest.ThumbsDown,
		&contest.CreatedAt,
		&contest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &contest, nil
}

func scanContests(rows pgx.Rows) ([]contests.Contest, error) {
	var result []contests.Contest
	for rows.Next() {
		contest, err := scanContest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contest: %w", err)
		}
		result = append(result, *contest)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan contests: %w", err)
	}
	return result, nil
}
