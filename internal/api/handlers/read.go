package handlers

import (
	"net/http"
	"strconv"

	"github.com/photo-prestiges/server/internal/api/problem"
	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/messaging"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ReadHandler serves the read service: a paginated contest listing from
// the event-fed read model.
type ReadHandler struct {
	Contests contests.Repository
	Env      string
}

func NewReadHandler(repo contests.Repository, env string) *ReadHandler {
	return &ReadHandler{Contests: repo, Env: env}
}

type contestListResponse struct {
	Items  []messaging.ContestMessage `json:"items"`
	Limit  int                        `json:"limit"`
	Offset int                        `json:"offset"`
}

func (h *ReadHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := contests.Filters{}
	if raw := query.Get("statusOpen"); raw != "" {
		statusOpen, err := strconv.ParseBool(raw)
		if err != nil {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "statusOpen must be true or false", err, h.Env)
			return
		}
		filters.StatusOpen = &statusOpen
	}

	pagination, err := parsePagination(query.Get("limit"), query.Get("offset"))
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid pagination", err, h.Env)
		return
	}

	list, err := h.Contests.List(r.Context(), filters, pagination)
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServer, "Server error", err, h.Env)
		return
	}

	items := make([]messaging.ContestMessage, 0, len(list))
	for _, contest := range list {
		items = append(items, messaging.NewContestMessage(contest))
	}
	writeJSON(w, http.StatusOK, contestListResponse{
		Items:  items,
		Limit:  pagination.Limit,
		Offset: pagination.Offset,
	})
}

func parsePagination(rawLimit, rawOffset string) (contests.Pagination, error) {
	pagination := contests.Pagination{Limit: defaultPageSize}

	if rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit <= 0 {
			return pagination, errInvalidPagination("limit", rawLimit)
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		pagination.Limit = limit
	}
	if rawOffset != "" {
		offset, err := strconv.Atoi(rawOffset)
		if err != nil || offset < 0 {
			return pagination, errInvalidPagination("offset", rawOffset)
		}
		pagination.Offset = offset
	}
	return pagination, nil
}

type paginationError struct {
	field, value string
}

func (e paginationError) Error() string {
	return e.field + " must be a positive integer, got " + strconv.Quote(e.value)
}

func errInvalidPagination(field, value string) error {
	return paginationError{field: field, value: value}
}
