package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photo-prestiges/server/internal/api/handlers"
	"github.com/photo-prestiges/server/internal/api/middleware"
	"github.com/photo-prestiges/server/internal/auth"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/contest"
	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/domain/ids"
	"github.com/photo-prestiges/server/internal/domain/users"
	"github.com/photo-prestiges/server/internal/registration"
	"github.com/photo-prestiges/server/internal/storage/memory"
)

const testGatewayToken = "gw-test-token"

func testBase() Base {
	return Base{
		Config: config.Config{
			Gateway:     config.GatewayConfig{Token: testGatewayToken},
			Environment: "test",
		},
		Logger: zerolog.Nop(),
	}
}

type requestOpts struct {
	userID string
	role   users.Role
	noAuth bool
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any, opts requestOpts) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if !opts.noAuth {
		req.Header.Set(middleware.GatewayTokenHeader, testGatewayToken)
	}
	if opts.userID != "" {
		req.Header.Set(middleware.UserIDHeader, opts.userID)
		req.Header.Set(middleware.UserRoleHeader, string(opts.role))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func newContestRouter(t *testing.T) (http.Handler, *memory.Repository) {
	t.Helper()
	repo := memory.NewRepository()
	svc := contest.NewService(repo, zerolog.Nop())
	router := NewContestRouter(testBase(), handlers.NewContestsHandler(svc, "test"))
	return router, repo
}

func TestGatewayTokenRequired(t *testing.T) {
	router, _ := newContestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/contests/create", nil, requestOpts{noAuth: true})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestIdentityRequired(t *testing.T) {
	router, _ := newContestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/contests/create", map[string]any{}, requestOpts{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpointsSkipGatewayAuth(t *testing.T) {
	router, _ := newContestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := doRequest(t, router, http.MethodGet, path, nil, requestOpts{noAuth: true})
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestCreateContest_EndToEnd(t *testing.T) {
	router, repo := newContestRouter(t)
	ownerID := ids.NewULID()

	rec := doRequest(t, router, http.MethodPost, "/contests/create", map[string]any{
		"description": "most dramatic sky",
		"place":       "Dam Square",
		"image":       "https://img/target.jpg",
		"endTime":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}, requestOpts{userID: ownerID, role: users.RoleTargetOwner})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ownerID, resp["owner"])
	assert.Equal(t, true, resp["statusOpen"])
	assert.Contains(t, resp, "_id", "legacy id key")

	stored, err := repo.Contests().Get(context.Background(), resp["_id"].(string))
	require.NoError(t, err)
	assert.Equal(t, "Dam Square", stored.Place)
}

func TestCreateContest_ParticipantForbidden(t *testing.T) {
	router, _ := newContestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/contests/create", map[string]any{
		"description": "x",
		"place":       "y",
		"image":       "https://img/t.jpg",
		"endTime":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}, requestOpts{userID: ids.NewULID(), role: users.RoleParticipant})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateContest_ValidationProblem(t *testing.T) {
	router, _ := newContestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/contests/create", map[string]any{
		"description": "missing image and endTime",
	}, requestOpts{userID: ids.NewULID(), role: users.RoleTargetOwner})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterSubmission_DuplicateConflict(t *testing.T) {
	router, _ := newContestRouter(t)
	ownerID := ids.NewULID()

	rec := doRequest(t, router, http.MethodPost, "/contests/create", map[string]any{
		"description": "x",
		"place":       "y",
		"image":       "https://img/t.jpg",
		"endTime":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
	}, requestOpts{userID: ownerID, role: users.RoleTargetOwner})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	contestID := created["_id"].(string)

	participant := requestOpts{userID: ids.NewULID(), role: users.RoleParticipant}
	body := map[string]any{"contestId": contestID}

	rec = doRequest(t, router, http.MethodPost, "/contests/register", body, participant)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/contests/register", body, participant)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVote(t *testing.T) {
	router, repo := newContestRouter(t)
	contestID := seedOpenContest(t, repo)

	rec := doRequest(t, router, http.MethodPut, "/contests/vote", map[string]any{
		"_id":  contestID,
		"vote": "up",
	}, requestOpts{userID: ids.NewULID(), role: users.RoleParticipant})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["thumbsUp"])

	rec = doRequest(t, router, http.MethodPut, "/contests/vote", map[string]any{
		"_id":  contestID,
		"vote": "sideways",
	}, requestOpts{userID: ids.NewULID(), role: users.RoleParticipant})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := newContestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/contests/create", nil, requestOpts{userID: ids.NewULID(), role: users.RoleTargetOwner})
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func seedOpenContest(t *testing.T, repo *memory.Repository) string {
	t.Helper()
	contest := contests.Contest{
		ID:          ids.NewULID(),
		OwnerID:     ids.NewULID(),
		Description: "seeded",
		Place:       "Dam Square",
		Image:       "https://img/t.jpg",
		StartTime:   time.Now(),
		EndTime:     time.Now().Add(48 * time.Hour),
		StatusOpen:  true,
	}
	require.NoError(t, repo.Contests().Upsert(context.Background(), contest))
	return contest.ID
}

func TestRegistrationRouter(t *testing.T) {
	repo := memory.NewRepository()
	svc := registration.NewService(repo, zerolog.Nop())
	router := NewRegistrationRouter(testBase(), handlers.NewUsersHandler(svc, "test"))

	body := map[string]any{
		"username": "maartje",
		"email":    "maartje@example.com",
		"password": "s3cret-password",
		"role":     "participant",
	}
	rec := doRequest(t, router, http.MethodPost, "/users/register", body, requestOpts{})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp, "password", "hash must not leak over HTTP")

	// Same email again conflicts.
	body["username"] = "other"
	rec = doRequest(t, router, http.MethodPost, "/users/register", body, requestOpts{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthRouter_Login(t *testing.T) {
	repo := memory.NewRepository()
	hash, err := auth.HashPassword("s3cret-password")
	require.NoError(t, err)
	require.NoError(t, repo.Users().Upsert(context.Background(), users.User{
		ID:           ids.NewULID(),
		Username:     "maartje",
		Email:        "maartje@example.com",
		PasswordHash: hash,
		Role:         users.RoleParticipant,
	}))

	svc := auth.NewService(repo.Users(), "test-secret", time.Hour, "prestiges-auth", zerolog.Nop())
	router := NewAuthRouter(testBase(), handlers.NewAuthHandler(svc, "test"))

	rec := doRequest(t, router, http.MethodPost, "/auth/login", map[string]any{
		"username": "maartje",
		"password": "s3cret-password",
	}, requestOpts{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
	assert.Equal(t, "participant", resp["role"])

	rec = doRequest(t, router, http.MethodPost, "/auth/login", map[string]any{
		"username": "maartje",
		"password": "wrong",
	}, requestOpts{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReadRouter_ListWithFilterAndPagination(t *testing.T) {
	repo := memory.NewRepository()
	for i := 0; i < 3; i++ {
		seedOpenContest(t, repo)
	}
	closedID := seedOpenContest(t, repo)
	_, err := repo.Contests().Close(context.Background(), closedID)
	require.NoError(t, err)

	router := NewReadRouter(testBase(), handlers.NewReadHandler(repo.Contests(), "test"))

	rec := doRequest(t, router, http.MethodGet, "/read/get?statusOpen=true&limit=2", nil, requestOpts{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items  []map[string]any `json:"items"`
		Limit  int              `json:"limit"`
		Offset int              `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Limit)

	rec = doRequest(t, router, http.MethodGet, "/read/get?statusOpen=true&limit=2&offset=2", nil, requestOpts{})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1, "third open contest on the second page")

	rec = doRequest(t, router, http.MethodGet, "/read/get?limit=bogus", nil, requestOpts{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClockRouter_RemainingTime(t *testing.T) {
	repo := memory.NewRepository()
	contestID := seedOpenContest(t, repo)

	router := NewClockRouter(testBase(), handlers.NewClockHandler(repo.Contests(), "test"))

	rec := doRequest(t, router, http.MethodGet, fmt.Sprintf("/contests/get?contestId=%s", contestID), nil, requestOpts{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["statusOpen"])
	assert.Greater(t, resp["remainingSeconds"].(float64), float64(0))

	rec = doRequest(t, router, http.MethodGet, "/contests/get?contestId="+ids.NewULID(), nil, requestOpts{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeEnqueuer struct {
	enqueued []string
	err      error
}

func (f *fakeEnqueuer) EnqueueScore(_ context.Context, submissionID string) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, submissionID)
	return nil
}

func TestScoreRouter_UpdateScore(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	router := NewScoreRouter(testBase(), handlers.NewScoresHandler(enqueuer, "test"))

	rec := doRequest(t, router, http.MethodPut, "/scores/update-score", map[string]any{
		"submissionId": "sub-1",
	}, requestOpts{})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"sub-1"}, enqueuer.enqueued)

	rec = doRequest(t, router, http.MethodPut, "/scores/update-score", map[string]any{}, requestOpts{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
