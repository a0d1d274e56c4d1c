package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/live"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/workers"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
)

// TrackingService owns tracking rows and keeps habit streaks in step with
// them. It has its own write queue, independent of HabitService's.
type TrackingService struct {
	store   domain.Store
	queue   *workers.WriteQueue
	changes *live.Broadcaster
	log     *zap.Logger
}

func NewTrackingService(store domain.Store, queue *workers.WriteQueue, changes *live.Broadcaster, log *zap.Logger) *TrackingService {
	return &TrackingService{
		store:   store,
		queue:   queue,
		changes: changes,
		log:     logger.OrNop(log).With(zap.String("service", "trackings")),
	}
}

func (s *TrackingService) committed(op workers.Op) workers.Op {
	return func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			return err
		}
		s.changes.Notify()
		return nil
	}
}

func (s *TrackingService) write(ctx context.Context, op workers.Op) error {
	return s.queue.Do(ctx, s.committed(op))
}

// Insert writes the row unless one exists for the same habit and day.
func (s *TrackingService) Insert(ctx context.Context, t *domain.HabitTracking) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidTracking, err)
	}

	var inserted bool
	err := s.write(ctx, func(ctx context.Context) error {
		var err error
		inserted, err = s.store.InsertTracking(ctx, t)
		return err
	})
	return inserted, err
}

func (s *TrackingService) toggleOp(habitID int64, day string, status *bool) workers.Op {
	return func(ctx context.Context) error {
		row, err := s.store.GetTracking(ctx, habitID, day)
		if err != nil {
			return err
		}

		if !row.Status {
			if err := s.store.IncrementStreak(ctx, habitID); err != nil {
				return err
			}
			if _, err := s.store.RaiseLongestStreak(ctx, habitID); err != nil {
				return err
			}
		} else {
			if err := s.store.DecrementStreak(ctx, habitID); err != nil {
				return err
			}
		}

		if err := s.store.SetTrackingStatus(ctx, habitID, day, !row.Status); err != nil {
			return err
		}
		if status != nil {
			*status = !row.Status
		}
		return nil
	}
}

// ToggleHabitDoneStatus flips the row for (habitID, day) and moves the
// habit's streak with it. A missing row yields ErrTrackingNotFound and
// nothing is changed. It returns the new status.
func (s *TrackingService) ToggleHabitDoneStatus(ctx context.Context, habitID int64, day string) (bool, error) {
	if _, err := domain.ParseDay(day); err != nil {
		return false, err
	}

	var status bool
	if err := s.write(ctx, s.toggleOp(habitID, day, &status)); err != nil {
		return false, err
	}

	s.log.Debug("habit_toggled", zap.Int64("habit_id", habitID), zap.String("day", day), zap.Bool("done", status))
	return status, nil
}

// ToggleAsync queues the toggle and returns at once. The channel receives
// the outcome after the write has run.
func (s *TrackingService) ToggleAsync(ctx context.Context, habitID int64, day string) (<-chan error, error) {
	if _, err := domain.ParseDay(day); err != nil {
		return nil, err
	}
	return s.queue.Submit(ctx, s.committed(s.toggleOp(habitID, day, nil)))
}

// ResetStreakIfNotCompletedYesterday zeroes the streak of every habit whose
// row for the day before today is missing or not done. It returns those
// habit ids.
func (s *TrackingService) ResetStreakIfNotCompletedYesterday(ctx context.Context, today string) ([]int64, error) {
	yesterday, err := domain.AddDays(today, -1)
	if err != nil {
		return nil, err
	}

	var reset []int64
	err = s.write(ctx, func(ctx context.Context) error {
		ids, err := s.store.HabitIDsNotDoneOn(ctx, yesterday)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := s.store.ResetStreak(ctx, id); err != nil {
				return fmt.Errorf("tracking service: reset streak of habit %d: %w", id, err)
			}
		}
		reset = ids
		return nil
	})
	return reset, err
}

func (s *TrackingService) DeleteAllTrackingsForHabit(ctx context.Context, habitID int64) error {
	return s.write(ctx, func(ctx context.Context) error {
		return s.store.DeleteTrackingsForHabit(ctx, habitID)
	})
}

// --- reads ---

func (s *TrackingService) CountHabitsForDate(ctx context.Context, day string) (int, error) {
	return s.store.CountTrackingsForDay(ctx, day)
}

func (s *TrackingService) CountCompletedHabitsOnDate(ctx context.Context, day string) (int, error) {
	return s.store.CountCompletedOnDay(ctx, day)
}

func (s *TrackingService) HabitTrackingsForDate(ctx context.Context, day string) ([]*domain.HabitTracking, error) {
	return s.store.ListTrackingsForDay(ctx, day)
}

func (s *TrackingService) TrackingsForHabit(ctx context.Context, habitID int64) ([]*domain.HabitTracking, error) {
	if _, err := s.store.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}
	return s.store.ListTrackingsForHabit(ctx, habitID)
}

func (s *TrackingService) AllTrackings(ctx context.Context) ([]*domain.HabitTracking, error) {
	return s.store.ListAllTrackings(ctx)
}

// Summary reports how many of day's rows exist and how many are done.
func (s *TrackingService) Summary(ctx context.Context, day string) (*domain.DaySummary, error) {
	if _, err := domain.ParseDay(day); err != nil {
		return nil, err
	}

	total, err := s.store.CountTrackingsForDay(ctx, day)
	if err != nil {
		return nil, err
	}
	completed, err := s.store.CountCompletedOnDay(ctx, day)
	if err != nil {
		return nil, err
	}

	summary := &domain.DaySummary{Date: day, Total: total, Completed: completed}
	if total > 0 {
		summary.Rate = float64(completed) / float64(total) * 100
	}
	return summary, nil
}

// --- observables ---

func (s *TrackingService) WatchTrackingsForDate(ctx context.Context, day string) *live.Value[live.Outcome[[]*domain.HabitTracking]] {
	return live.Watch(ctx, s.changes, func(ctx context.Context) ([]*domain.HabitTracking, error) {
		return s.HabitTrackingsForDate(ctx, day)
	})
}

func (s *TrackingService) WatchCompletedCount(ctx context.Context, day string) *live.Value[live.Outcome[int]] {
	return live.Watch(ctx, s.changes, func(ctx context.Context) (int, error) {
		return s.CountCompletedHabitsOnDate(ctx, day)
	})
}
