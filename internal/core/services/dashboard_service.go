package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/metrics"
)

// DashboardService is what the API talks to: it validates input, rejects
// duplicate names and pairs every toggle with the longest-streak update.
type DashboardService struct {
	habits    *HabitService
	trackings *TrackingService
	clock     domain.Clock
	metrics   *metrics.Recorder
	log       *zap.Logger
}

func NewDashboardService(habits *HabitService, trackings *TrackingService, clock domain.Clock, rec *metrics.Recorder, log *zap.Logger) *DashboardService {
	return &DashboardService{
		habits:    habits,
		trackings: trackings,
		clock:     clock,
		metrics:   rec,
		log:       logger.OrNop(log).With(zap.String("service", "dashboard")),
	}
}

type CreateHabitInput struct {
	Name        string
	Description string
	Icon        string
}

type UpdateHabitInput struct {
	ID          int64
	Name        string
	Description string
	Icon        string
	Streak      *int
}

func validateInput(name, description string) (string, string, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if name == "" {
		return "", "", domain.ErrHabitNameEmpty
	}
	if description == "" {
		return "", "", domain.ErrHabitDescriptionEmpty
	}
	return name, description, nil
}

func (s *DashboardService) CreateHabit(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	name, description, err := validateInput(input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	exists, err := s.habits.HabitExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: failed to check name: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateName
	}

	id, err := s.habits.Create(ctx, name, description, input.Icon, 0)
	if err != nil {
		return nil, err
	}
	return s.habits.Habit(ctx, id)
}

func (s *DashboardService) UpdateHabit(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	name, description, err := validateInput(input.Name, input.Description)
	if err != nil {
		return nil, err
	}

	habit, err := s.habits.Habit(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if name != habit.Name {
		exists, err := s.habits.HabitExists(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("dashboard: failed to check name: %w", err)
		}
		if exists {
			return nil, domain.ErrDuplicateName
		}
	}

	streak := habit.Streak
	if input.Streak != nil {
		streak = *input.Streak
	}

	if err := habit.Update(name, description, input.Icon, streak); err != nil {
		return nil, err
	}
	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *DashboardService) DeleteHabit(ctx context.Context, id int64) error {
	if _, err := s.habits.Habit(ctx, id); err != nil {
		return err
	}
	return s.habits.Delete(ctx, id)
}

// Toggle flips the habit for day (today when empty), then lets the habit
// side catch its longest streak up. It returns the refreshed habit and the
// new status.
func (s *DashboardService) Toggle(ctx context.Context, habitID int64, day string) (*domain.DayHabit, error) {
	if day == "" {
		day = domain.Today(s.clock)
	}

	done, err := s.trackings.ToggleHabitDoneStatus(ctx, habitID, day)
	if err != nil {
		return nil, err
	}
	s.metrics.IncToggle(done)

	if _, err := s.habits.UpdateLongestStreakForHabit(ctx, habitID); err != nil {
		return nil, err
	}

	habit, err := s.habits.Habit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	return &domain.DayHabit{Habit: *habit, Done: done}, nil
}

func (s *DashboardService) HabitsForToday(ctx context.Context) ([]*domain.DayHabit, error) {
	return s.habits.AllHabits(ctx)
}

func (s *DashboardService) HabitsForDay(ctx context.Context, day string) ([]*domain.DayHabit, error) {
	if day == "" {
		return s.habits.AllHabits(ctx)
	}
	return s.habits.HabitsForDay(ctx, day)
}
