package service

import (
	"context"
	"math"
	"time"

	"rewards_quest_bot/internal/model"
	"rewards_quest_bot/pkg/console"
	"rewards_quest_bot/pkg/logger"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// SafetyMargin is added to every computed wait to absorb clock skew.
const SafetyMargin = 5 * time.Minute

type SleepFunc func(ctx context.Context, d time.Duration) error

type Scheduler struct {
	accounts  []model.Account
	processor AccountProcessor
	clock     clockwork.Clock
	printer   *console.Printer

	accountPause time.Duration
	sleep        SleepFunc

	history  HistoryRepository
	notifier Notifier
	board    *StatusBoard
}

type SchedulerOption func(*Scheduler)

func WithSleep(sleep SleepFunc) SchedulerOption {
	return func(s *Scheduler) { s.sleep = sleep }
}

func WithHistory(history HistoryRepository) SchedulerOption {
	return func(s *Scheduler) { s.history = history }
}

func WithNotifier(notifier Notifier) SchedulerOption {
	return func(s *Scheduler) { s.notifier = notifier }
}

func WithStatusBoard(board *StatusBoard) SchedulerOption {
	return func(s *Scheduler) { s.board = board }
}

func NewScheduler(accounts []model.Account, processor AccountProcessor, clock clockwork.Clock, printer *console.Printer, opts Options, options ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		accounts:     accounts,
		processor:    processor,
		clock:        clock,
		printer:      printer,
		accountPause: opts.AccountPause,
	}
	s.sleep = func(ctx context.Context, d time.Duration) error {
		return printer.Countdown(ctx, clock, d)
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// RunPass processes every account once, in order, and computes the wait
// before the next pass.
func (s *Scheduler) RunPass(ctx context.Context) *model.PassReport {
	report := &model.PassReport{ID: uuid.New(), StartedAt: s.clock.Now()}

	for i, account := range s.accounts {
		if i > 0 {
			if err := pause(ctx, s.clock, s.accountPause); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		report.Results = append(report.Results, s.processor.ProcessAccount(ctx, account))
	}

	report.FinishedAt = s.clock.Now()
	report.Wait = CalculateWaitTime(report.NextEligibleTimes(), report.FinishedAt)
	report.NextPassAt = report.FinishedAt.Add(report.Wait)
	return report
}

// RunOnce runs a single pass and publishes its report.
func (s *Scheduler) RunOnce(ctx context.Context) *model.PassReport {
	report := s.RunPass(ctx)
	if ctx.Err() == nil {
		s.publish(ctx, report)
	}
	return report
}

// Run repeats passes until ctx is cancelled and returns the context error.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		report := s.RunOnce(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printer.Infof("Next pass at %s", console.FormatTime(report.NextPassAt))
		if err := s.sleep(ctx, report.Wait); err != nil {
			return err
		}
	}
}

func (s *Scheduler) publish(ctx context.Context, report *model.PassReport) {
	s.printer.Successf("Pass finished: %d/%d accounts OK", report.AccountsOK(), len(report.Results))
	logger.Logger().Info("Pass finished",
		zap.String("pass", report.ID.String()),
		zap.Int("accounts", len(report.Results)),
		zap.Int("ok", report.AccountsOK()),
		zap.Duration("wait", report.Wait),
	)

	if s.board != nil {
		s.board.Update(report)
	}
	if s.history != nil {
		if err := s.history.RecordPass(ctx, report); err != nil {
			logger.Logger().Error("Failed to record pass", zap.Error(err))
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyPass(ctx, report); err != nil {
			logger.Logger().Error("Failed to send pass summary", zap.Error(err))
		}
	}
}

// CalculateWaitTime returns how long to wait before the next pass given the
// accounts' next-eligible times. Nil and non-future times are ignored; with
// nothing left the full cooldown applies.
func CalculateWaitTime(times []*time.Time, now time.Time) time.Duration {
	var earliest *time.Time
	for _, t := range times {
		if t == nil || !t.After(now) {
			continue
		}
		if earliest == nil || t.Before(*earliest) {
			earliest = t
		}
	}
	if earliest == nil {
		return Cooldown
	}

	secs := math.Ceil(earliest.Sub(now).Seconds())
	return normalizeWait(time.Duration(secs)*time.Second + SafetyMargin)
}

func normalizeWait(wait time.Duration) time.Duration {
	if wait < SafetyMargin {
		return Cooldown
	}
	return wait
}
