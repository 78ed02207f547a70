package handlers

import (
	"net/http"

	"github.com/photo-prestiges/server/internal/api/problem"
	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/registration"
)

// UsersHandler serves the registration service's signup endpoint.
type UsersHandler struct {
	Service *registration.Service
	Env     string
}

func NewUsersHandler(service *registration.Service, env string) *UsersHandler {
	return &UsersHandler{Service: service, Env: env}
}

type registerUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

type registerUserResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	role, err := users.ParseRole(req.Role)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), registration.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	// The password hash never appears in HTTP responses.
	writeJSON(w, http.StatusCreated, registerUserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	})
}
