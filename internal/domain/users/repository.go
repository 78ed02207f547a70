package users

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned by the register service when the email
	// is already taken.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
)

type Repository interface {
	Upsert(ctx context.Context, user User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Delete(ctx context.Context, id string) error
}
