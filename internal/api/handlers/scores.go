package handlers

import (
	"context"
	"net/http"

	"github.com/photo-prestiges/server/internal/api/problem"
)

// ScoreEnqueuer schedules a submission for scoring.
type ScoreEnqueuer interface {
	EnqueueScore(ctx context.Context, submissionID string) error
}

// ScoresHandler serves the score service's legacy trigger endpoint.
// Scoring normally starts from consumed submission events; this endpoint
// only re-enqueues a submission, e.g. after a manual fix.
type ScoresHandler struct {
	Enqueuer ScoreEnqueuer
	Env      string
}

func NewScoresHandler(enqueuer ScoreEnqueuer, env string) *ScoresHandler {
	return &ScoresHandler{Enqueuer: enqueuer, Env: env}
}

type updateScoreRequest struct {
	SubmissionID string `json:"submissionId" validate:"required"`
}

func (h *ScoresHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	var req updateScoreRequest
	if !decodeJSON(w, r, h.Env, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.Env)
		return
	}

	if err := h.Enqueuer.EnqueueScore(r.Context(), req.SubmissionID); err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServer, "Server error", err, h.Env)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
