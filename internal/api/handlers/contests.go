package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/photo-prestiges/server/internal/api/middleware"
	"github.com/photo-prestiges/server/internal/api/problem"
	"github.com/photo-prestiges/server/internal/contest"
	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/messaging"
)

var validate = validator.New()

// ContestsHandler serves the contest service's endpoints. Responses reuse
// the event payload shapes so HTTP clients and consumers see the same
// field names.
type ContestsHandler struct {
	Service *contest.Service
	Env     string
}

func NewContestsHandler(service *contest.Service, env string) *ContestsHandler {
	return &ContestsHandler{Service: service, Env: env}
}

// identity pulls the gateway-verified requester or writes a 401.
func identity(w http.ResponseWriter, r *http.Request, env string) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		problem.Write(w, r, http.StatusUnauthorized, problem.TypeGateway, "Missing user identity", nil, env)
	}
	return id, ok
}

type createContestRequest struct {
	Description string    `json:"description" validate:"required"`
	Place       string    `json:"place" validate:"required"`
	Image       string    `json:"image" validate:"required,url"`
	EndTime     time.Time `json:"endTime" validate:"required"`
}

func (h *ContestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	var req createContestRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	created, err := h.Service.CreateContest(r.Context(), contest.CreateContestInput{
		OwnerID:     id.UserID,
		OwnerRole:   id.Role,
		Description: req.Description,
		Place:       req.Place,
		Image:       req.Image,
		EndTime:     req.EndTime,
	})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, messaging.NewContestMessage(*created))
}

type updateContestRequest struct {
	ID    string  `json:"_id" validate:"required"`
	Place *string `json:"place,omitempty"`
	Image *string `json:"image,omitempty" validate:"omitempty,url"`
}

func (h *ContestsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	var req updateContestRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	updated, err := h.Service.UpdateContest(r.Context(), req.ID, id.UserID, contests.Patch{Place: req.Place, Image: req.Image})
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, messaging.NewContestMessage(*updated))
}

type contestIDRequest struct {
	ID string `json:"_id" validate:"required"`
}

func (h *ContestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	var req contestIDRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	if err := h.Service.DeleteContest(r.Context(), req.ID, id.UserID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type voteRequest struct {
	ID   string `json:"_id" validate:"required"`
	Vote string `json:"vote" validate:"required"`
}

func (h *ContestsHandler) Vote(w http.ResponseWriter, r *http.Request) {
	if _, ok := identity(w, r, h.Env); !ok {
		return
	}

	var req voteRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	vote, err := contests.ParseVote(req.Vote)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	updated, err := h.Service.Vote(r.Context(), req.ID, vote)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, messaging.NewContestMessage(*updated))
}

type registerSubmissionRequest struct {
	ContestID string `json:"contestId" validate:"required"`
}

func (h *ContestsHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	var req registerSubmissionRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	created, err := h.Service.RegisterSubmission(r.Context(), req.ContestID, id.UserID, id.Role)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusCreated, messaging.NewSubmissionMessage(*created))
}

type updateSubmissionRequest struct {
	ID    string `json:"_id" validate:"required"`
	Image string `json:"image" validate:"required,url"`
}

func (h *ContestsHandler) UpdateSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	var req updateSubmissionRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	updated, err := h.Service.UpdateSubmission(r.Context(), req.ID, id.UserID, req.Image)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, messaging.NewSubmissionMessage(*updated))
}

type submissionIDRequest struct {
	ID string `json:"_id" validate:"required"`
}

func (h *ContestsHandler) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	h.deleteSubmission(w, r, h.Service.DeleteSubmission)
}

func (h *ContestsHandler) DeleteSubmissionAsOwner(w http.ResponseWriter, r *http.Request) {
	h.deleteSubmission(w, r, h.Service.DeleteSubmissionAsOwner)
}

func (h *ContestsHandler) deleteSubmission(w http.ResponseWriter, r *http.Request, remove func(ctx context.Context, submissionID, requesterID string) error) {
	id, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	var req submissionIDRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	if err := remove(r.Context(), req.ID, id.UserID); err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContestsHandler) GetSubmission(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	contestID := r.URL.Query().Get("contestId")
	if contestID == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "contestId is required", nil, h.Env)
		return
	}

	submission, err := h.Service.GetSubmission(r.Context(), contestID, id.UserID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, messaging.NewSubmissionMessage(*submission))
}

func (h *ContestsHandler) GetAllSubmissions(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r, h.Env)
	if !ok {
		return
	}

	contestID := r.URL.Query().Get("contestId")
	if contestID == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "contestId is required", nil, h.Env)
		return
	}

	all, err := h.Service.ListSubmissions(r.Context(), contestID, id.UserID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	items := make([]messaging.SubmissionMessage, 0, len(all))
	for _, submission := range all {
		items = append(items, messaging.NewSubmissionMessage(submission))
	}
	writeJSON(w, http.StatusOK, items)
}
