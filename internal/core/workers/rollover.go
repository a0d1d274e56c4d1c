package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/adapters/notify"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/metrics"
)

const RolloverJobName = "daily-rollover"

type StreakResetter interface {
	ResetStreakIfNotCompletedYesterday(ctx context.Context, today string) ([]int64, error)
}

type DaySeeder interface {
	CreateTrackingForAllHabits(ctx context.Context, day string) (int, error)
}

// RolloverJob closes the previous day and opens the next one: streaks of
// habits not done on D-1 are reset, then a D row is seeded for every habit.
type RolloverJob struct {
	resetter StreakResetter
	seeder   DaySeeder
	ledger   domain.RolloverLedger
	clock    domain.Clock
	policy   RetryPolicy
	notifier notify.Notifier
	metrics  *metrics.Recorder
	log      *zap.Logger

	mu    sync.Mutex
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRolloverJob(
	resetter StreakResetter,
	seeder DaySeeder,
	ledger domain.RolloverLedger,
	clock domain.Clock,
	policy RetryPolicy,
	notifier notify.Notifier,
	rec *metrics.Recorder,
	log *zap.Logger,
) *RolloverJob {
	return &RolloverJob{
		resetter: resetter,
		seeder:   seeder,
		ledger:   ledger,
		clock:    clock,
		policy:   policy,
		notifier: notifier,
		metrics:  rec,
		log:      logger.OrNop(log).With(zap.String("component", "rollover")),
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run performs the rollover for day. A day that already has a recorded
// rollover is skipped unless force is set. Runs never overlap.
func (j *RolloverJob) Run(ctx context.Context, day string, force bool) (*domain.RolloverReport, error) {
	if _, err := domain.ParseDay(day); err != nil {
		return nil, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	start := time.Now()
	report := &domain.RolloverReport{
		RunID:       uuid.NewString(),
		Day:         day,
		ResetHabits: []int64{},
	}
	log := j.log.With(zap.String("run_id", report.RunID), zap.String("day", day))

	if !force {
		done, err := j.ledger.HasRollover(ctx, day)
		if err != nil {
			j.metrics.ObserveRollover("failed", time.Since(start))
			return nil, fmt.Errorf("rollover: read ledger: %w", err)
		}
		if done {
			report.Skipped = true
			j.metrics.ObserveRollover("skipped", time.Since(start))
			log.Info("rollover_skipped")
			return report, nil
		}
	}

	var err error
	for attempt := 0; attempt <= j.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := j.policy.Delay(attempt)
			log.Warn("rollover_retry", zap.Int("attempt", attempt+1), zap.Duration("delay", delay), zap.Error(err))
			if serr := j.sleep(ctx, delay); serr != nil {
				break
			}
		}

		report.Attempts = attempt + 1
		err = j.runOnce(ctx, report)
		if err == nil || errors.Is(err, ErrQueueClosed) || errors.Is(err, domain.ErrInvalidDate) {
			break
		}
	}

	if err != nil {
		j.metrics.ObserveRollover("failed", time.Since(start))
		log.Error("rollover_failed", zap.Int("attempts", report.Attempts), zap.Error(err))
		return report, fmt.Errorf("rollover %s: %w", day, err)
	}

	j.metrics.ObserveRollover("success", time.Since(start))
	log.Info("rollover_completed",
		zap.Int("reset", len(report.ResetHabits)),
		zap.Int("seeded", report.SeededHabits),
		zap.Int("attempts", report.Attempts),
	)
	j.publish(ctx, report)
	return report, nil
}

func (j *RolloverJob) runOnce(ctx context.Context, report *domain.RolloverReport) error {
	reset, err := j.resetter.ResetStreakIfNotCompletedYesterday(ctx, report.Day)
	if err != nil {
		return fmt.Errorf("reset streaks: %w", err)
	}
	if reset == nil {
		reset = []int64{}
	}
	report.ResetHabits = reset

	seeded, err := j.seeder.CreateTrackingForAllHabits(ctx, report.Day)
	if err != nil {
		return fmt.Errorf("seed day: %w", err)
	}
	report.SeededHabits = seeded

	if err := j.ledger.RecordRollover(ctx, report.Day); err != nil {
		return fmt.Errorf("record ledger: %w", err)
	}
	return nil
}

func (j *RolloverJob) publish(ctx context.Context, report *domain.RolloverReport) {
	if j.notifier == nil {
		return
	}
	n := notify.Notification{
		Kind:   notify.KindRollover,
		Title:  "Daily Rollover",
		Body:   fmt.Sprintf("%d streaks reset, %d habits seeded for %s.", len(report.ResetHabits), report.SeededHabits, report.Day),
		Day:    report.Day,
		SentAt: j.clock.Now(),
		Data: map[string]any{
			"run_id":        report.RunID,
			"reset_habits":  report.ResetHabits,
			"seeded_habits": report.SeededHabits,
		},
	}
	if err := j.notifier.Notify(ctx, n); err != nil {
		j.log.Warn("rollover_event_failed", zap.String("run_id", report.RunID), zap.Error(err))
	}
}

// RunToday is the scheduled entry point.
func (j *RolloverJob) RunToday(ctx context.Context) (*domain.RolloverReport, error) {
	return j.Run(ctx, domain.Today(j.clock), false)
}

// CatchUp runs today's rollover when the ledger shows it was missed, e.g.
// because the process was down at midnight.
func (j *RolloverJob) CatchUp(ctx context.Context) (*domain.RolloverReport, error) {
	today := domain.Today(j.clock)
	done, err := j.ledger.HasRollover(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("rollover: read ledger: %w", err)
	}
	if done {
		return &domain.RolloverReport{Day: today, Skipped: true, ResetHabits: []int64{}}, nil
	}

	last, err := j.ledger.LastRollover(ctx)
	if err != nil {
		return nil, fmt.Errorf("rollover: read ledger: %w", err)
	}
	j.log.Info("rollover_catch_up", zap.String("last_rollover", last), zap.String("today", today))
	return j.Run(ctx, today, false)
}

// Register schedules the job at local midnight. A job already registered
// under the same name is kept.
func (j *RolloverJob) Register(s *Scheduler) (uuid.UUID, error) {
	id, created, err := s.ScheduleDaily(RolloverJobName, 0, 0, func() {
		_, _ = j.RunToday(context.Background())
	}, true)
	if err != nil {
		return uuid.Nil, err
	}
	if created {
		j.log.Info("rollover_scheduled", zap.Duration("first_run_in", DelayUntilNextMidnight(j.clock.Now())))
	}
	return id, nil
}

// DelayUntilNextMidnight returns the time left until the next local midnight.
func DelayUntilNextMidnight(now time.Time) time.Duration {
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}
