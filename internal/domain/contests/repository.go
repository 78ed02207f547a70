package contests

import (
	"context"
	"time"
)

// Filters narrows List results. A nil StatusOpen means no status filter.
type Filters struct {
	StatusOpen *bool
}

type Pagination struct {
	Limit  int
	Offset int
}

// Repository is implemented by the owning service's store as well as by
// every replica store. Upsert and Delete are idempotent so consumed events
// can be replayed safely.
type Repository interface {
	Upsert(ctx context.Context, contest Contest) error
	Get(ctx context.Context, id string) (*Contest, error)
	List(ctx context.Context, filters Filters, pagination Pagination) ([]Contest, error)
	// ApplyPatch patches only the non-nil fields and returns the updated row.
	ApplyPatch(ctx context.Context, id string, patch Patch) (*Contest, error)
	// AddVote atomically increments one of the thumb counters.
	AddVote(ctx context.Context, id string, vote Vote) (*Contest, error)
	// Close sets statusOpen to false. It reports true only when the contest
	// existed and was still open, making duplicate closures a safe no-op.
	Close(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	// ListExpired returns open contests whose endTime is before now.
	ListExpired(ctx context.Context, now time.Time) ([]Contest, error)
}
