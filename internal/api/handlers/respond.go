// Package handlers implements the HTTP endpoints of every service. Each
// service mounts only its own handlers; they share the response helpers and
// the gateway identity plumbing.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/photo-prestiges/server/internal/api/problem"
	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/submissions"
	"github.com/photo-prestiges/server/internal/domain/users"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, env string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request body", err, env)
		return false
	}
	return true
}

// writeDomainError maps the domain error vocabulary onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, env string) {
	switch {
	case errors.Is(err, contests.ErrNotFound), errors.Is(err, submissions.ErrNotFound), errors.Is(err, users.ErrNotFound):
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, env)
	case errors.Is(err, contests.ErrNotOwner), errors.Is(err, contests.ErrWrongRole):
		problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Forbidden", err, env)
	case errors.Is(err, contests.ErrClosed):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Contest is closed", err, env)
	case errors.Is(err, submissions.ErrDuplicate):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Already registered", err, env)
	case errors.Is(err, users.ErrDuplicateEmail):
		problem.Write(w, r, http.StatusConflict, problem.TypeConflict, "Email already in use", err, env)
	case errors.Is(err, contests.ErrEndTimeTooSoon), errors.Is(err, contests.ErrEndTimeTooLate),
		errors.Is(err, contests.ErrInvalidVote), errors.Is(err, users.ErrInvalidRole):
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, env)
	default:
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServer, "Server error", err, env)
	}
}
