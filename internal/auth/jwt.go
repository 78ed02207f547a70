// Package auth issues and validates the tokens the authentication service
// hands out, and hashes user passwords.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/photo-prestiges/server/internal/domain/users"
)

var (
	ErrMissingToken  = errors.New("missing token")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrWrongRoleType = errors.New("unknown role in token claims")
)

// Claims represents the JWT claims issued on login. The role travels in the
// token so the gateway can route role-restricted endpoints without a user
// lookup.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for an authenticated user.
func GenerateToken(user users.User, jwtSecret string, expiry time.Duration, issuer string) (string, time.Time, error) {
	if user.ID == "" {
		return "", time.Time{}, errors.New("user ID cannot be empty")
	}
	if jwtSecret == "" {
		return "", time.Time{}, errors.New("jwt secret cannot be empty")
	}

	now := time.Now()
	expiresAt := now.Add(expiry)

	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(jwtSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken parses and validates a token string and returns its claims.
func ValidateToken(tokenString, jwtSecret string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, ErrMissingToken
	}
	if jwtSecret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if _, err := users.ParseRole(claims.Role); err != nil {
		return nil, ErrWrongRoleType
	}

	return claims, nil
}
