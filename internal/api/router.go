// Package api assembles each service's HTTP router. All services share the
// same base: request logging, liveness/readiness probes, a metrics endpoint
// and the gateway token check on business routes.
package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/api/handlers"
	"github.com/photo-prestiges/server/internal/api/middleware"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/metrics"
)

// Base carries the wiring every router shares.
type Base struct {
	Config config.Config
	Logger zerolog.Logger
	Pool   *pgxpool.Pool // nil disables the database readiness probe
}

// newMux builds the shared base and returns the mux plus the middleware for
// business routes: the gateway token check, and optionally the forwarded
// user identity.
func (b Base) newMux() (*http.ServeMux, func(http.Handler) http.Handler, func(http.Handler) http.Handler) {
	mux := http.NewServeMux()
	mux.Handle("/healthz", handlers.Healthz())
	mux.Handle("/readyz", handlers.Readyz(b.Pool))
	mux.Handle("/metrics", metrics.Handler())

	gateway := middleware.GatewayAuth(b.Config.Gateway.Token, b.Config.Environment)
	authed := func(next http.Handler) http.Handler {
		return gateway(middleware.RequireIdentity(b.Config.Environment)(next))
	}
	return mux, gateway, authed
}

func (b Base) wrap(mux *http.ServeMux) http.Handler {
	return middleware.RequestLogging(b.Logger)(mux)
}

// NewContestRouter mounts the contest service's endpoints. Every route
// needs a gateway-verified user identity.
func NewContestRouter(b Base, h *handlers.ContestsHandler) http.Handler {
	mux, _, authed := b.newMux()

	mux.Handle("/contests/create", authed(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(h.Create),
	})))
	mux.Handle("/contests/updateContest", authed(methodMux(map[string]http.Handler{
		http.MethodPut: http.HandlerFunc(h.Update),
	})))
	mux.Handle("/contests/deleteContest", authed(methodMux(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(h.Delete),
	})))
	mux.Handle("/contests/vote", authed(methodMux(map[string]http.Handler{
		http.MethodPut: http.HandlerFunc(h.Vote),
	})))
	mux.Handle("/contests/register", authed(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(h.Register),
	})))
	mux.Handle("/contests/updateSubmission", authed(methodMux(map[string]http.Handler{
		http.MethodPut: http.HandlerFunc(h.UpdateSubmission),
	})))
	mux.Handle("/contests/deleteSubmission", authed(methodMux(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(h.DeleteSubmission),
	})))
	mux.Handle("/contests/deleteSubmissionAsOwner", authed(methodMux(map[string]http.Handler{
		http.MethodDelete: http.HandlerFunc(h.DeleteSubmissionAsOwner),
	})))
	mux.Handle("/contests/getSubmission", authed(methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(h.GetSubmission),
	})))
	mux.Handle("/contests/getAllSubmissions", authed(methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(h.GetAllSubmissions),
	})))

	return b.wrap(mux)
}

// NewRegistrationRouter mounts the registration service's signup endpoint.
func NewRegistrationRouter(b Base, h *handlers.UsersHandler) http.Handler {
	mux, gateway, _ := b.newMux()
	mux.Handle("/users/register", gateway(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(h.Register),
	})))
	return b.wrap(mux)
}

// NewAuthRouter mounts the authentication service's login endpoint.
func NewAuthRouter(b Base, h *handlers.AuthHandler) http.Handler {
	mux, gateway, _ := b.newMux()
	mux.Handle("/auth/login", gateway(methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(h.Login),
	})))
	return b.wrap(mux)
}

// NewReadRouter mounts the read service's contest listing.
func NewReadRouter(b Base, h *handlers.ReadHandler) http.Handler {
	mux, gateway, _ := b.newMux()
	mux.Handle("/read/get", gateway(methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(h.List),
	})))
	return b.wrap(mux)
}

// NewClockRouter mounts the clock service's remaining-time lookup.
func NewClockRouter(b Base, h *handlers.ClockHandler) http.Handler {
	mux, gateway, _ := b.newMux()
	mux.Handle("/contests/get", gateway(methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(h.RemainingTime),
	})))
	return b.wrap(mux)
}

// NewScoreRouter mounts the score service's manual re-score trigger.
func NewScoreRouter(b Base, h *handlers.ScoresHandler) http.Handler {
	mux, gateway, _ := b.newMux()
	mux.Handle("/scores/update-score", gateway(methodMux(map[string]http.Handler{
		http.MethodPut: http.HandlerFunc(h.UpdateScore),
	})))
	return b.wrap(mux)
}

// NewProbeRouter serves only the shared base routes; used by the mail
// service, which has no business endpoints.
func NewProbeRouter(b Base) http.Handler {
	mux, _, _ := b.newMux()
	return b.wrap(mux)
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
