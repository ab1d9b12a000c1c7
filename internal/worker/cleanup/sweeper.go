// Package cleanup runs periodic maintenance over persisted sessions.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/articlehub/articlehub/internal/metrics"
)

// DefaultInterval is the time between sweeps when none is configured.
const DefaultInterval = 10 * time.Minute

// ExpiredSessionDeleter removes sessions whose lifetime has elapsed at now.
type ExpiredSessionDeleter interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper deletes expired session rows on a fixed interval.
type Sweeper struct {
	store    ExpiredSessionDeleter
	logger   *slog.Logger
	metrics  metrics.Recorder
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSweeper creates a session sweeper.
func NewSweeper(store ExpiredSessionDeleter, interval time.Duration, logger *slog.Logger, recorder metrics.Recorder) *Sweeper {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		store:    store,
		logger:   logger.With("component", "session.sweeper"),
		metrics:  recorder,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("sweeper already started")
	}
	s.started = true
	s.mu.Unlock()

	s.logger.Info("session sweeper started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.SweepOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			s.logger.Error("session sweep failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("session sweeper stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// Start runs the sweeper in a goroutine. Stop waits for it to exit.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := s.Run(ctx); err != nil {
			s.logger.Error("session sweeper exited", "error", err)
		}
	}()
}

// Stop cancels a sweeper started with Start and waits for it or for ctx.
func (s *Sweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SweepOnce deletes every expired session and returns how many were removed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	s.metrics.AddSessionsSwept(n)
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	return n, nil
}
