package app

import (
	"context"

	"github.com/photo-prestiges/server/internal/api"
	"github.com/photo-prestiges/server/internal/api/handlers"
	"github.com/photo-prestiges/server/internal/auth"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/replica"
)

const jwtIssuer = "photo-prestiges"

// NewAuthApp builds the auth service: login against the local user
// replica, fed by user.created. It publishes nothing, so no relay runs.
func NewAuthApp(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg, "auth")
	if err != nil {
		return nil, err
	}

	service := auth.NewService(c.repo.Users(), cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, jwtIssuer, c.logger)
	handler := api.NewAuthRouter(c.apiBase(), handlers.NewAuthHandler(service, cfg.Environment))

	bindings := []Binding{
		{Queue: "auth_service_queue", Route: messaging.UserCreated,
			Handler: replica.UserCreated(c.repo.Users(), c.logger)},
	}

	return c.newApp("auth", handler, c.consumerRunner(bindings)), nil
}
