package handlers

import (
	"net/http"
	"time"

	"github.com/photo-prestiges/server/internal/api/problem"
	"github.com/photo-prestiges/server/internal/domain/contests"
)

// ClockHandler serves the clock service's remaining-time lookup.
type ClockHandler struct {
	Contests contests.Repository
	Env      string
}

func NewClockHandler(repo contests.Repository, env string) *ClockHandler {
	return &ClockHandler{Contests: repo, Env: env}
}

type remainingTimeResponse struct {
	ContestID        string `json:"contestId"`
	StatusOpen       bool   `json:"statusOpen"`
	EndTime          string `json:"endTime"`
	RemainingSeconds int64  `json:"remainingSeconds"`
}

// RemainingTime reports how long a contest stays open. A closed or already
// expired contest reports zero rather than a negative duration.
func (h *ClockHandler) RemainingTime(w http.ResponseWriter, r *http.Request) {
	contestID := r.URL.Query().Get("contestId")
	if contestID == "" {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "contestId is required", nil, h.Env)
		return
	}

	contest, err := h.Contests.Get(r.Context(), contestID)
	if err != nil {
		writeDomainError(w, r, err, h.Env)
		return
	}

	remaining := int64(0)
	if contest.StatusOpen {
		if d := time.Until(contest.EndTime); d > 0 {
			remaining = int64(d.Seconds())
		}
	}

	writeJSON(w, http.StatusOK, remainingTimeResponse{
		ContestID:        contest.ID,
		StatusOpen:       contest.StatusOpen,
		EndTime:          contest.EndTime.UTC().Format(time.RFC3339),
		RemainingSeconds: remaining,
	})
}
