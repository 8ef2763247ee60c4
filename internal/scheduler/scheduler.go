// Package scheduler runs chain-ritual evaluation on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/adhocore/gronx"

	"vaultfire/internal/logging"
)

// Evaluator is the part of the engine the scheduler drives.
type Evaluator interface {
	EvaluateChainRituals(ctx context.Context, now time.Time) ([]string, error)
}

type Scheduler struct {
	cron  string
	eval  Evaluator
	log   *slog.Logger
	clock func() time.Time
	retry time.Duration
}

func New(cron string, eval Evaluator, log *slog.Logger) (*Scheduler, error) {
	if !gronx.IsValid(cron) {
		return nil, fmt.Errorf("invalid chain cron expression: %s", cron)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Scheduler{
		cron:  cron,
		eval:  eval,
		log:   log,
		clock: func() time.Time { return time.Now().UTC() },
		retry: 30 * time.Second,
	}, nil
}

// NextTick returns the first tick strictly after t.
func (s *Scheduler) NextTick(t time.Time) (time.Time, error) {
	return gronx.NextTickAfter(s.cron, t, false)
}

// RunOnce evaluates chain rituals at the current clock time.
func (s *Scheduler) RunOnce(ctx context.Context) ([]string, error) {
	now := s.clock()
	participants, err := s.eval.EvaluateChainRituals(ctx, now)
	if err != nil {
		s.log.Error("chain_evaluation_failed", "error", err)
		return nil, err
	}
	if len(participants) > 0 {
		s.log.Info("chain_evaluation_awarded", "participants", participants)
	} else {
		s.log.Debug("chain_evaluation_idle")
	}
	return participants, nil
}

// Run sleeps until each cron tick and evaluates, until ctx is done.
// Evaluations run on the calling goroutine so they never overlap.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("chain_scheduler_started", "cron", s.cron)
	for {
		next, err := s.NextTick(s.clock())
		wait := time.Until(next)
		if err != nil {
			s.log.Error("chain_nexttick_failed", "cron", s.cron, "error", err)
			wait = s.retry
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.log.Info("chain_scheduler_stopping")
			return ctx.Err()
		case <-timer.C:
		}
		if err == nil {
			_, _ = s.RunOnce(ctx)
		}
	}
}
