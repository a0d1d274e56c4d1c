package services

import (
	"context"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/live"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

const DefaultCompletionWindow = 7

// StatsService answers analytics questions from tracking history. Each
// query has a synchronous form and an asynchronous one that delivers a
// live.Outcome.
type StatsService struct {
	store   domain.Store
	clock   domain.Clock
	changes *live.Broadcaster
}

func NewStatsService(store domain.Store, clock domain.Clock, changes *live.Broadcaster) *StatsService {
	return &StatsService{
		store:   store,
		clock:   clock,
		changes: changes,
	}
}

// BestStreak returns the longest run of done days for one habit, or across
// every habit's rows when habitID is nil.
func (s *StatsService) BestStreak(ctx context.Context, habitID *int64) (int, error) {
	var rows []*domain.HabitTracking
	var err error

	if habitID == nil {
		rows, err = s.store.ListAllTrackings(ctx)
	} else {
		if _, err := s.store.GetHabit(ctx, *habitID); err != nil {
			return 0, err
		}
		rows, err = s.store.ListTrackingsForHabit(ctx, *habitID)
	}
	if err != nil {
		return 0, err
	}

	return streaks.BestStreak(rows), nil
}

func (s *StatsService) CompletionRate(ctx context.Context, habitID int64, days int) (*domain.CompletionStats, error) {
	if _, err := s.store.GetHabit(ctx, habitID); err != nil {
		return nil, err
	}
	rows, err := s.store.ListTrackingsForHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}

	today := domain.Today(s.clock)
	stats, err := s.window(today, days)
	if err != nil {
		return nil, err
	}
	stats.HabitID = &habitID
	stats.Rate = streaks.CompletionRate(rows, habitID, days, today)
	return stats, nil
}

func (s *StatsService) OverallCompletionRate(ctx context.Context, days int) (*domain.CompletionStats, error) {
	habitCount, err := s.store.CountHabits(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListAllTrackings(ctx)
	if err != nil {
		return nil, err
	}

	today := domain.Today(s.clock)
	stats, err := s.window(today, days)
	if err != nil {
		return nil, err
	}
	stats.Rate = streaks.OverallCompletionRate(rows, habitCount, days, today)
	return stats, nil
}

func (s *StatsService) window(today string, days int) (*domain.CompletionStats, error) {
	from, to, err := streaks.Window(today, days)
	if err != nil {
		return nil, err
	}
	return &domain.CompletionStats{Days: days, From: from, To: to}, nil
}

func (s *StatsService) MaxLongestStreak(ctx context.Context) (int, error) {
	return s.store.MaxLongestStreak(ctx)
}

// LookupHabit resolves a title to its id and icon.
func (s *StatsService) LookupHabit(ctx context.Context, name string) (*domain.HabitLookup, error) {
	id, err := s.store.HabitIDByName(ctx, name)
	if err != nil {
		return nil, err
	}
	icon, err := s.store.IconByName(ctx, name)
	if err != nil {
		return nil, err
	}

	kind := domain.IconKindSymbol
	if domain.IsEmoji(icon) {
		kind = domain.IconKindEmoji
	}
	return &domain.HabitLookup{ID: id, Name: name, Icon: icon, IconKind: kind}, nil
}

// --- asynchronous forms ---

func (s *StatsService) TriggerBestStreak(ctx context.Context, habitID *int64) *live.Value[live.Outcome[int]] {
	return live.Trigger(ctx, func(ctx context.Context) (int, error) {
		return s.BestStreak(ctx, habitID)
	})
}

func (s *StatsService) TriggerCompletionRate(ctx context.Context, habitID int64, days int) *live.Value[live.Outcome[*domain.CompletionStats]] {
	return live.Trigger(ctx, func(ctx context.Context) (*domain.CompletionStats, error) {
		return s.CompletionRate(ctx, habitID, days)
	})
}

func (s *StatsService) TriggerOverallCompletionRate(ctx context.Context, days int) *live.Value[live.Outcome[*domain.CompletionStats]] {
	return live.Trigger(ctx, func(ctx context.Context) (*domain.CompletionStats, error) {
		return s.OverallCompletionRate(ctx, days)
	})
}

func (s *StatsService) TriggerLookupHabit(ctx context.Context, name string) *live.Value[live.Outcome[*domain.HabitLookup]] {
	return live.Trigger(ctx, func(ctx context.Context) (*domain.HabitLookup, error) {
		return s.LookupHabit(ctx, name)
	})
}

func (s *StatsService) WatchBestStreak(ctx context.Context, habitID *int64) *live.Value[live.Outcome[int]] {
	return live.Watch(ctx, s.changes, func(ctx context.Context) (int, error) {
		return s.BestStreak(ctx, habitID)
	})
}

func (s *StatsService) WatchOverallCompletionRate(ctx context.Context, days int) *live.Value[live.Outcome[*domain.CompletionStats]] {
	return live.Watch(ctx, s.changes, func(ctx context.Context) (*domain.CompletionStats, error) {
		return s.OverallCompletionRate(ctx, days)
	})
}

func (s *StatsService) WatchMaxLongestStreak(ctx context.Context) *live.Value[live.Outcome[int]] {
	return live.Watch(ctx, s.changes, s.MaxLongestStreak)
}
