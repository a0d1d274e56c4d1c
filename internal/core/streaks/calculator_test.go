package streaks

import (
	"fmt"
	"testing"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(habitID int64, day string, done bool) *domain.HabitTracking {
	return &domain.HabitTracking{HabitID: habitID, Date: day, Status: done}
}

func consecutive(habitID int64, start string, statuses ...bool) []*domain.HabitTracking {
	rows := make([]*domain.HabitTracking, 0, len(statuses))
	for i, s := range statuses {
		day, err := domain.AddDays(start, i)
		if err != nil {
			panic(err)
		}
		rows = append(rows, row(habitID, day, s))
	}
	return rows
}

func TestBestStreak(t *testing.T) {
	tests := []struct {
		name string
		rows []*domain.HabitTracking
		want int
	}{
		{
			name: "Empty history",
			rows: nil,
			want: 0,
		},
		{
			name: "Single done day",
			rows: []*domain.HabitTracking{row(1, "2024-01-10", true)},
			want: 1,
		},
		{
			name: "Single open day",
			rows: []*domain.HabitTracking{row(1, "2024-01-10", false)},
			want: 0,
		},
		{
			name: "False day splits the run, longer side wins",
			rows: consecutive(1, "2024-01-01", true, true, false, true, true, true),
			want: 3,
		},
		{
			name: "False day splits the run, earlier side longer",
			rows: consecutive(1, "2024-01-01", true, true, true, true, false, true),
			want: 4,
		},
		{
			name: "Run ending in an open day still counts",
			rows: consecutive(1, "2024-01-01", true, true, true, false),
			want: 3,
		},
		{
			name: "Open day then gap keeps the earlier run",
			rows: append(
				consecutive(1, "2024-01-01", true, true, false),
				row(1, "2024-01-09", true),
			),
			want: 2,
		},
		{
			name: "Gap of more than one day resets even if both sides are done",
			rows: []*domain.HabitTracking{
				row(1, "2024-01-01", true),
				row(1, "2024-01-02", true),
				row(1, "2024-01-05", true),
			},
			want: 2,
		},
		{
			name: "Unsorted rows are sorted before counting",
			rows: []*domain.HabitTracking{
				row(1, "2024-01-03", true),
				row(1, "2024-01-01", true),
				row(1, "2024-01-02", true),
			},
			want: 3,
		},
		{
			name: "Month boundary is consecutive",
			rows: consecutive(1, "2024-01-30", true, true, true, true),
			want: 4,
		},
		{
			name: "Rows with malformed dates are ignored",
			rows: []*domain.HabitTracking{
				row(1, "2024-01-01", true),
				row(1, "garbage", true),
				row(1, "2024-01-02", true),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BestStreak(tt.rows))
		})
	}
}

func TestBestStreak_NConsecutiveDays(t *testing.T) {
	for _, n := range []int{1, 2, 7, 30, 366} {
		t.Run(fmt.Sprintf("%d days", n), func(t *testing.T) {
			statuses := make([]bool, n)
			for i := range statuses {
				statuses[i] = true
			}
			assert.Equal(t, n, BestStreak(consecutive(1, "2024-01-01", statuses...)))
		})
	}
}

func TestBestStreak_DoesNotMutateInput(t *testing.T) {
	rows := []*domain.HabitTracking{
		row(1, "2024-01-02", true),
		row(1, "2024-01-01", true),
	}

	BestStreak(rows)

	assert.Equal(t, "2024-01-02", rows[0].Date)
	assert.Equal(t, "2024-01-01", rows[1].Date)
}

func TestCompletionRate(t *testing.T) {
	today := "2024-01-10"

	t.Run("Three of seven days", func(t *testing.T) {
		rows := consecutive(1, "2024-01-04", true, false, true, false, false, true, false)
		rows = append(rows, row(2, today, true))

		rate := CompletionRate(rows, 1, 7, today)

		assert.InDelta(t, 42.857, rate, 0.001)
	})

	t.Run("Rows outside the window do not count", func(t *testing.T) {
		rows := []*domain.HabitTracking{
			row(1, "2024-01-03", true),
			row(1, "2024-01-11", true),
			row(1, today, true),
		}

		assert.InDelta(t, 100.0/7, CompletionRate(rows, 1, 7, today), 0.001)
	})

	t.Run("Zero days returns zero", func(t *testing.T) {
		rows := []*domain.HabitTracking{row(1, today, true)}
		assert.Equal(t, 0.0, CompletionRate(rows, 1, 0, today))
		assert.Equal(t, 0.0, CompletionRate(rows, 1, -3, today))
	})

	t.Run("Single day window", func(t *testing.T) {
		rows := []*domain.HabitTracking{row(1, today, true)}
		assert.Equal(t, 100.0, CompletionRate(rows, 1, 1, today))
	})
}

func TestOverallCompletionRate(t *testing.T) {
	today := "2024-01-10"

	t.Run("Averages over all habits", func(t *testing.T) {
		rows := append(
			consecutive(1, "2024-01-09", true, true),
			consecutive(2, "2024-01-09", false, true)...,
		)

		rate := OverallCompletionRate(rows, 2, 2, today)

		assert.InDelta(t, 75.0, rate, 0.001)
	})

	t.Run("Zero habits must not fail", func(t *testing.T) {
		assert.Equal(t, 0.0, OverallCompletionRate(nil, 0, 7, today))
	})

	t.Run("Zero days must not fail", func(t *testing.T) {
		rows := []*domain.HabitTracking{row(1, today, true)}
		assert.Equal(t, 0.0, OverallCompletionRate(rows, 1, 0, today))
	})
}

func TestWindow(t *testing.T) {
	from, to, err := Window("2024-03-01", 7)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-24", from)
	assert.Equal(t, "2024-03-01", to)

	from, _, err = Window("2024-03-01", 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", from)
}
