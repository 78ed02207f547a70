package storage

import (
	"context"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/outbox"
)

// Repository groups a service's data access by domain. Every service runs
// against its own database; the same interfaces back the owning store and
// the event-fed replicas.
type Repository interface {
	Contests() contests.Repository
	Submissions() submissions.Repository
	Users() users.Repository
	Outbox() outbox.Store

	// WithTx runs fn inside a transaction. Entity mutations and their
	// outbox appends share the transaction so events cannot be lost
	// between a write and its publish intent.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
