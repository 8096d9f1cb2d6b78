package core

import (
	"context"
	"log/slog"
	"time"

	"leadwatch/internal/config"
)

const (
	cycleTimeout = 60 * time.Second

	// How often a disabled scheduler rechecks settings, so enabling the
	// review interval at runtime takes effect without a restart.
	recheckInterval = time.Minute
)

// CycleRunner triggers one review cycle addressed to the given chat.
type CycleRunner interface {
	RunCycle(ctx context.Context, chatID int64)
}

// Scheduler runs review cycles on the interval from settings. The interval
// is re-read every iteration, so settings reloads take effect on the next
// tick.
type Scheduler struct {
	runner   CycleRunner
	settings *config.Store
	chatID   int64
	logger   *slog.Logger
}

func NewScheduler(runner CycleRunner, settings *config.Store, chatID int64, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		runner:   runner,
		settings: settings,
		chatID:   chatID,
		logger:   logger,
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	for {
		interval := s.settings.Current().ReviewInterval.Std()
		wait := interval
		if wait <= 0 {
			wait = recheckInterval
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if interval <= 0 {
			continue
		}

		s.runTick(ctx)
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()
	s.runner.RunCycle(cycleCtx, s.chatID)
}
