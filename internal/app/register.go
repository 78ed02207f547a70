package app

import (
	"context"

	"github.com/photo-prestiges/server/internal/api"
	"github.com/photo-prestiges/server/internal/api/handlers"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/registration"
)

// NewRegisterApp builds the registration service. It owns user accounts
// and only publishes; every other service learns about users through
// user.created.
func NewRegisterApp(ctx context.Context, cfg config.Config) (*App, error) {
	c, err := newCore(ctx, cfg, "register")
	if err != nil {
		return nil, err
	}

	service := registration.NewService(c.repo, c.logger)
	handler := api.NewRegistrationRouter(c.apiBase(), handlers.NewUsersHandler(service, cfg.Environment))

	return c.newApp("register", handler, c.relayRunner()), nil
}
