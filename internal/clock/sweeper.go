// Package clock closes contests whose end time has passed. It keeps a
// replica of contests fed by broker events, sweeps it on an interval, and
// publishes the status change so every other service learns about the
// closure the same way.
package clock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/photo-prestiges/server/internal/domain/contests"
	"github.com/photo-prestiges/server/internal/messaging"
	"github.com/photo-prestiges/server/internal/metrics"
	"github.com/photo-prestiges/server/internal/outbox"
	"github.com/photo-prestiges/server/internal/storage"
)

// Sweeper periodically closes expired contests.
type Sweeper struct {
	repo     storage.Repository
	interval time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSweeper(repo storage.Repository, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		repo:     repo,
		interval: interval,
		logger:   logger.With().Str("component", "clock").Logger(),
		now:      time.Now,
	}
}

// Run sweeps on the configured interval until ctx is cancelled. Sweep
// failures are logged and the next tick retries; a broken database round
// must not stop the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("contest sweep started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			closed, err := s.SweepOnce(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("contest sweep failed")
				continue
			}
			if closed > 0 {
				s.logger.Info().Int("closed", closed).Msg("contest sweep closed contests")
			}
		}
	}
}

// SweepOnce closes every open contest whose end time has passed and returns
// how many it closed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	expired, err := s.repo.Contests().ListExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list expired contests: %w", err)
	}

	closed := 0
	for _, contest := range expired {
		if err := s.close(ctx, contest.ID, "sweep"); err != nil {
			// Keep going: one bad contest must not block the rest.
			s.logger.Error().Err(err).Str("contest_id", contest.ID).Msg("close expired contest failed")
			continue
		}
		closed++
	}
	return closed, nil
}

// CloseNow closes a single contest immediately, outside the sweep cadence.
// Used when a consumed contest event shows the end time already passed.
func (s *Sweeper) CloseNow(ctx context.Context, contestID string) error {
	return s.close(ctx, contestID, "event")
}

// close flips the contest to closed and records the status event in the
// same transaction. A contest already closed (or deleted concurrently) is
// skipped without an event, keeping the closure exactly-once.
func (s *Sweeper) close(ctx context.Context, contestID, trigger string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx storage.Repository) error {
		changed, err := tx.Contests().Close(ctx, contestID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		status := messaging.ContestStatusMessage{ContestID: contestID, Status: false}
		if err := outbox.Append(ctx, tx.Outbox(), messaging.ContestStatusChanged, status); err != nil {
			return fmt.Errorf("append status event: %w", err)
		}
		metrics.ContestsClosed.WithLabelValues(trigger).Inc()
		return nil
	})
	if errors.Is(err, contests.ErrNotFound) {
		s.logger.Warn().Str("contest_id", contestID).Msg("contest disappeared before closing, skipping")
		return nil
	}
	return err
}

// WatchContestEvents wraps a replica handler so that a consumed contest
// event whose end time already passed triggers an immediate closure rather
// than waiting for the next sweep.
func (s *Sweeper) WatchContestEvents(next messaging.HandlerFunc) messaging.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		if err := next(ctx, body); err != nil {
			return err
		}

		var msg messaging.ContestMessage
		if err := messaging.Decode(body, &msg); err != nil {
			return nil
		}
		contest, err := s.repo.Contests().Get(ctx, msg.ID)
		if err != nil {
			return nil
		}
		if contest.StatusOpen && contest.Expired(s.now()) {
			return s.CloseNow(ctx, contest.ID)
		}
		return nil
	}
}
