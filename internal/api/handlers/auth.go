package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/photo-prestiges/server/internal/api/problem"
	"github.com/photo-prestiges/server/internal/auth"
)

// AuthHandler serves the authentication service's login endpoint.
type AuthHandler struct {
	Service *auth.Service
	Env     string
}

func NewAuthHandler(service *auth.Service, env string) *AuthHandler {
	return &AuthHandler{Service: service, Env: env}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	result, err := h.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeForbidden, "Invalid credentials", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServer, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		UserID:    result.User.ID,
		Username:  result.User.Username,
		Role:      string(result.User.Role),
	})
}
