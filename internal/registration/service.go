// Package registration implements the registration service's write side:
// it owns user accounts and announces each new account on the broker. The
// password hash travels with the event so the authentication service can
// verify logins against its own replica.
package registration

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/auth"
	"github.com/photo-prestiges/server/internal/domain/ids"
	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/outbox"
	"github.com/photo-prestiges/server/internal/storage"
)

// MinPasswordLength guards against trivially weak passwords.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Service owns user accounts.
type Service struct {
	repo   storage.Repository
	logger zerolog.Logger
}

func NewService(repo storage.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "registration").Logger(),
	}
}

// RegisterUserInput carries a signup request.
type RegisterUserInput struct {
	Username string
	Email    string
	Password string
	Role     users.Role
}

// RegisterUser creates an account. The email must be unique; the plaintext
// password is hashed before anything is stored or published.
func (s *Service) RegisterUser(ctx context.Context, input RegisterUserInput) (*users.User, error) {
	if input.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !emailPattern.MatchString(input.Email) {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(input.Password) < MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if _, err := users.ParseRole(string(input.Role)); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := users.User{
		ID:           ids.NewULID(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		if err := tx.Users().Upsert(ctx, user); err != nil {
			return err
		}
		return outbox.Append(ctx, tx.Outbox(), messaging.UserCreated, messaging.NewUserMessage(user))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Msg("user registered")
	return &user, nil
}
