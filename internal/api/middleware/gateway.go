// Package middleware holds the HTTP middleware shared by every service.
package middleware

import (
	"context"
	"net/http"

	"github.com/photo-prestiges/server/internal/api/problem"
	"github.com/photo-prestiges/server/internal/domain/users"
)

// Headers set by the API gateway. Services are not reachable directly;
// they trust the gateway to have verified the user's token and to forward
// the identity in these headers.
const (
	GatewayTokenHeader = "X-Gateway-Token"
	UserIDHeader       = "X-User-Id"
	UserRoleHeader     = "X-User-Role"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the gateway-verified requester.
type Identity struct {
	UserID string
	Role   users.Role
}

// GatewayAuth rejects requests that do not carry the shared gateway token.
func GatewayAuth(token, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(GatewayTokenHeader) != token {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeGateway, "Missing or invalid gateway token", nil, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireIdentity extracts the forwarded user identity and stores it on the
// request context. Requests without a valid identity are rejected.
func RequireIdentity(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(UserIDHeader)
			role, err := users.ParseRole(r.Header.Get(UserRoleHeader))
			if userID == "" || err != nil {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeGateway, "Missing user identity", err, env)
				return
			}
			identity := Identity{UserID: userID, Role: role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
		})
	}
}

// IdentityFrom returns the gateway-verified identity, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}
