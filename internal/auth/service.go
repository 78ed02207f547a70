package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/domain/users"
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords;
// callers never learn which one failed.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service verifies logins against the authentication service's user
// replica, which is fed by account-created events.
type Service struct {
	users  users.Repository
	secret string
	expiry time.Duration
	issuer string
	logger zerolog.Logger
}

func NewService(repo users.Repository, secret string, expiry time.Duration, issuer string, logger zerolog.Logger) *Service {
	return &Service{
		users:  repo,
		secret: secret,
		expiry: expiry,
		issuer: issuer,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      users.User
}

// Login checks the credentials and issues a token. A user registered
// moments ago may not have replicated yet; that also surfaces as invalid
// credentials and resolves itself once the event arrives.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, users.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrWrongPassword) {
			s.logger.Warn().Str("username", username).Msg("failed login attempt")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, expiresAt, err := GenerateToken(*user, s.secret, s.expiry, s.issuer)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("username", username).Msg("user logged in")
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}
