package cli

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/app"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/services"
)

type StatsCmd struct {
	BestStreak    BestStreakCmd    `cmd:"" help:"Longest run of done days."`
	Completion    CompletionCmd    `cmd:"" help:"Completion rate over the last days."`
	LongestStreak LongestStreakCmd `cmd:"" help:"Highest stored longest streak."`
}

type BestStreakCmd struct {
	Habit string `help:"Habit title. Every habit when empty."`
}

func (cmd *BestStreakCmd) Run(c *Context) error {
	return c.withApp(func(a *app.App) error {
		id, err := lookupHabit(c.Ctx, a.Stats, cmd.Habit)
		if err != nil {
			return err
		}
		best, err := a.Stats.BestStreak(c.Ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "best streak: %d\n", best)
		return nil
	})
}

type CompletionCmd struct {
	Habit string `help:"Habit title. Averages every habit when empty."`
	Days  int    `help:"Window length in days, ending today." default:"7"`
}

func (cmd *CompletionCmd) Run(c *Context) error {
	return c.withApp(func(a *app.App) error {
		id, err := lookupHabit(c.Ctx, a.Stats, cmd.Habit)
		if err != nil {
			return err
		}

		var stats *domain.CompletionStats
		if id == nil {
			stats, err = a.Stats.OverallCompletionRate(c.Ctx, cmd.Days)
		} else {
			stats, err = a.Stats.CompletionRate(c.Ctx, *id, cmd.Days)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(c.Out, "completion %s..%s: %.1f%%\n", stats.From, stats.To, stats.Rate)
		return nil
	})
}

type LongestStreakCmd struct{}

func (cmd *LongestStreakCmd) Run(c *Context) error {
	return c.withApp(func(a *app.App) error {
		longest, err := a.Stats.MaxLongestStreak(c.Ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.Out, "longest streak: %d\n", longest)
		return nil
	})
}

func lookupHabit(ctx context.Context, stats *services.StatsService, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	habit, err := stats.LookupHabit(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("habit %q: %w", name, err)
	}
	return &habit.ID, nil
}
