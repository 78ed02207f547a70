// Package app assembles one service process per spec'd deployment unit:
// HTTP server, broker consumers, outbox relay and background workers run
// under a single errgroup and shut down together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/photo-prestiges/server/internal/api"
	"github.com/photo-prestiges/server/internal/config"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/outbox"
	"github.com/photo-prestiges/server/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

// Runner is a long-running component of a service. Runners return when
// their context is canceled; any other return tears the whole process down.
type Runner func(ctx context.Context) error

// App is one runnable service process.
type App struct {
	Name    string
	Logger  zerolog.Logger
	handler http.Handler
	addr    string
	runners []Runner
	closers []func()
}

// New builds the named service. Service names match the deployment units;
// each process owns its database pool and broker connection.
func New(ctx context.Context, name string, cfg config.Config) (*App, error) {
	switch name {
	case "register":
		return NewRegisterApp(ctx, cfg)
	case "auth":
		return NewAuthApp(ctx, cfg)
	case "contest":
		return NewContestApp(ctx, cfg)
	case "clock":
		return NewClockApp(ctx, cfg)
	case "score":
		return NewScoreApp(ctx, cfg)
	case "mail":
		return NewMailApp(ctx, cfg)
	case "read":
		return NewReadApp(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown service %q", name)
	}
}

// Run serves HTTP and supervises the service's runners until ctx is
// canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.addr,
		Handler:           a.handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		a.Logger.Info().Str("addr", a.addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	for _, runner := range a.runners {
		group.Go(func() error {
			err := runner(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	err := group.Wait()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.Logger.Info().Msg("service stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// core holds the resources every service shares: logger, database pool,
// repositories and the broker connection.
type core struct {
	cfg    config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
	repo   *postgres.Repository
	conn   *messaging.Conn
}

func newCore(ctx context.Context, cfg config.Config, service string) (*core, error) {
	logger := config.NewLogger(cfg.Logging).With().Str("service", service).Logger()

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.Database.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxConnections)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}

	conn, err := messaging.Dial(cfg.Broker, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &core{cfg: cfg, logger: logger, pool: pool, repo: repo, conn: conn}, nil
}

func (c *core) apiBase() api.Base {
	return api.Base{Config: c.cfg, Logger: c.logger, Pool: c.pool}
}

func (c *core) addr() string {
	return fmt.Sprintf("%s:%d", c.cfg.Server.Host, c.cfg.Server.Port)
}

func (c *core) closers() []func() {
	return []func(){
		func() { _ = c.conn.Close() },
		func() { c.pool.Close() },
	}
}

func (c *core) newApp(name string, handler http.Handler, runners ...Runner) *App {
	return &App{
		Name:    name,
		Logger:  c.logger,
		handler: handler,
		addr:    c.addr(),
		runners: runners,
		closers: c.closers(),
	}
}

func (c *core) consumerRunner(bindings []Binding) Runner {
	consumer := messaging.NewConsumer(c.conn, c.cfg.Broker, c.logger)
	return func(ctx context.Context) error {
		return consumer.Run(ctx, bindings)
	}
}

func (c *core) relayRunner() Runner {
	publisher := messaging.NewPublisher(c.conn, c.logger)
	relay := outbox.NewRelay(c.repo.Outbox(), publisher, c.cfg.Outbox, c.logger)
	return relay.Run
}

// Binding aliases the messaging binding so service files read as a queue
// table: {queue, route, handler}.
type Binding = messaging.Binding
