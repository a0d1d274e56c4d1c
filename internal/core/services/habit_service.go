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

// HabitService owns habit records. Every write goes through its queue; reads
// go straight to the store and never wait on pending writes.
type HabitService struct {
	store   domain.Store
	queue   *workers.WriteQueue
	clock   domain.Clock
	changes *live.Broadcaster
	log     *zap.Logger
}

func NewHabitService(store domain.Store, queue *workers.WriteQueue, clock domain.Clock, changes *live.Broadcaster, log *zap.Logger) *HabitService {
	return &HabitService{
		store:   store,
		queue:   queue,
		clock:   clock,
		changes: changes,
		log:     logger.OrNop(log).With(zap.String("service", "habits")),
	}
}

func (s *HabitService) committed(op workers.Op) workers.Op {
	return func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			return err
		}
		s.changes.Notify()
		return nil
	}
}

func (s *HabitService) write(ctx context.Context, op workers.Op) error {
	return s.queue.Do(ctx, s.committed(op))
}

// Create stores a new habit and seeds today's tracking row for it. Name
// uniqueness is the caller's concern.
func (s *HabitService) Create(ctx context.Context, name, description, icon string, initialStreak int) (int64, error) {
	habit, err := domain.NewHabit(name, description, icon, initialStreak)
	if err != nil {
		return 0, err
	}

	today := domain.Today(s.clock)
	err = s.write(ctx, func(ctx context.Context) error {
		if err := s.store.CreateHabit(ctx, habit); err != nil {
			return err
		}
		if _, err := s.store.InsertTracking(ctx, domain.NewHabitTracking(habit.ID, today)); err != nil {
			return fmt.Errorf("habit service: failed to seed today's tracking: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("habit_created", zap.Int64("habit_id", habit.ID), zap.String("name", habit.Name))
	return habit.ID, nil
}

func (s *HabitService) Update(ctx context.Context, habit *domain.Habit) error {
	return s.write(ctx, func(ctx context.Context) error {
		return s.store.UpdateHabit(ctx, habit)
	})
}

// Delete removes the habit and every tracking row that belongs to it.
func (s *HabitService) Delete(ctx context.Context, id int64) error {
	err := s.write(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteTrackingsForHabit(ctx, id); err != nil {
			return err
		}
		return s.store.DeleteHabit(ctx, id)
	})
	if err == nil {
		s.log.Info("habit_deleted", zap.Int64("habit_id", id))
	}
	return err
}

func (s *HabitService) IncrementStreak(ctx context.Context, id int64) error {
	return s.write(ctx, func(ctx context.Context) error {
		return s.store.IncrementStreak(ctx, id)
	})
}

func (s *HabitService) DecrementStreak(ctx context.Context, id int64) error {
	return s.write(ctx, func(ctx context.Context) error {
		return s.store.DecrementStreak(ctx, id)
	})
}

func (s *HabitService) ResetStreak(ctx context.Context, id int64) error {
	return s.write(ctx, func(ctx context.Context) error {
		return s.store.ResetStreak(ctx, id)
	})
}

// UpdateLongestStreakForHabit raises the longest streak to the current one
// when it has been overtaken and reports whether it changed.
func (s *HabitService) UpdateLongestStreakForHabit(ctx context.Context, id int64) (bool, error) {
	var raised bool
	err := s.write(ctx, func(ctx context.Context) error {
		var err error
		raised, err = s.store.RaiseLongestStreak(ctx, id)
		return err
	})
	return raised, err
}

// CreateTrackingForAllHabits seeds an open row for day for every habit that
// does not have one yet. It returns how many rows were written.
func (s *HabitService) CreateTrackingForAllHabits(ctx context.Context, day string) (int, error) {
	if _, err := domain.ParseDay(day); err != nil {
		return 0, err
	}

	seeded := 0
	err := s.write(ctx, func(ctx context.Context) error {
		ids, err := s.store.ListHabitIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			inserted, err := s.store.InsertTracking(ctx, domain.NewHabitTracking(id, day))
			if err != nil {
				return fmt.Errorf("habit service: seeding habit %d for %s: %w", id, day, err)
			}
			if inserted {
				seeded++
			}
		}
		return nil
	})
	return seeded, err
}

// --- reads ---

// AllHabits lists every habit with today's status, done ones first.
func (s *HabitService) AllHabits(ctx context.Context) ([]*domain.DayHabit, error) {
	return s.store.ListHabitsForDay(ctx, domain.Today(s.clock))
}

func (s *HabitService) HabitsForDay(ctx context.Context, day string) ([]*domain.DayHabit, error) {
	if _, err := domain.ParseDay(day); err != nil {
		return nil, err
	}
	return s.store.ListHabitsForDay(ctx, day)
}

func (s *HabitService) Habit(ctx context.Context, id int64) (*domain.Habit, error) {
	return s.store.GetHabit(ctx, id)
}

func (s *HabitService) HabitTitles(ctx context.Context) ([]string, error) {
	return s.store.ListHabitTitles(ctx)
}

func (s *HabitService) HabitIDByTitle(ctx context.Context, title string) (int64, error) {
	return s.store.HabitIDByName(ctx, title)
}

func (s *HabitService) IconByName(ctx context.Context, name string) (string, error) {
	return s.store.IconByName(ctx, name)
}

func (s *HabitService) MaxLongestStreak(ctx context.Context) (int, error) {
	return s.store.MaxLongestStreak(ctx)
}

func (s *HabitService) HabitExists(ctx context.Context, name string) (bool, error) {
	return s.store.HabitExists(ctx, name)
}

func (s *HabitService) CountHabits(ctx context.Context) (int, error) {
	return s.store.CountHabits(ctx)
}

// --- observables ---

func (s *HabitService) WatchAllHabits(ctx context.Context) *live.Value[live.Outcome[[]*domain.DayHabit]] {
	return live.Watch(ctx, s.changes, s.AllHabits)
}

func (s *HabitService) WatchHabitTitles(ctx context.Context) *live.Value[live.Outcome[[]string]] {
	return live.Watch(ctx, s.changes, s.HabitTitles)
}

func (s *HabitService) WatchMaxLongestStreak(ctx context.Context) *live.Value[live.Outcome[int]] {
	return live.Watch(ctx, s.changes, s.MaxLongestStreak)
}
