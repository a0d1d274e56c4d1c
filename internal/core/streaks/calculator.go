// Package streaks computes best streaks and completion rates from tracking
// history. Every function is pure: callers fetch the rows, this package only
// counts them.
package streaks

import (
	"sort"
	"time"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
)

// SortByDate returns a copy of rows ordered by calendar day ascending.
// Rows for the same day keep their relative order.
func SortByDate(rows []*domain.HabitTracking) []*domain.HabitTracking {
	sorted := make([]*domain.HabitTracking, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			sorted = append(sorted, r)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

// BestStreak returns the longest run of consecutive calendar days marked done.
// A day marked not done, or a gap of more than one day, ends the run.
//
// Rows from several habits may be passed together; they are then treated as
// one combined calendar, as the global streak does.
func BestStreak(rows []*domain.HabitTracking) int {
	maxStreak := 0
	currentStreak := 0

	var lastDate time.Time
	hasLast := false

	for _, row := range SortByDate(rows) {
		date, err := domain.ParseDay(row.Date)
		if err != nil {
			continue
		}

		if !hasLast || date.Equal(lastDate.AddDate(0, 0, 1)) {
			if row.Status {
				currentStreak++
			} else {
				maxStreak = max(maxStreak, currentStreak)
				currentStreak = 0
			}
		} else {
			maxStreak = max(maxStreak, currentStreak)
			if row.Status {
				currentStreak = 1
			} else {
				currentStreak = 0
			}
		}

		lastDate = date
		hasLast = true
	}

	return max(maxStreak, currentStreak)
}

// Window returns the inclusive [from, to] days of a trailing window of the
// given length ending on today.
func Window(today string, days int) (string, string, error) {
	if days < 1 {
		days = 1
	}
	from, err := domain.AddDays(today, -(days - 1))
	if err != nil {
		return "", "", err
	}
	return from, today, nil
}

func countCompletedInWindow(rows []*domain.HabitTracking, habitID *int64, from, to string) int {
	completed := 0
	for _, r := range rows {
		if r == nil || !r.Status {
			continue
		}
		if habitID != nil && r.HabitID != *habitID {
			continue
		}
		if r.Date < from || r.Date > to {
			continue
		}
		completed++
	}
	return completed
}

// CompletionRate is the share (0-100) of the last days days on which the
// habit was completed. A non-positive window yields 0.
func CompletionRate(rows []*domain.HabitTracking, habitID int64, days int, today string) float64 {
	if days <= 0 {
		return 0
	}

	from, to, err := Window(today, days)
	if err != nil {
		return 0
	}

	completed := countCompletedInWindow(rows, &habitID, from, to)
	return float64(completed) / float64(days) * 100
}

// OverallCompletionRate averages completion over every habit in the window.
// Zero habits or a non-positive window yield 0.
func OverallCompletionRate(rows []*domain.HabitTracking, habitCount, days int, today string) float64 {
	if habitCount <= 0 || days <= 0 {
		return 0
	}

	from, to, err := Window(today, days)
	if err != nil {
		return 0
	}

	completed := countCompletedInWindow(rows, nil, from, to)
	return float64(completed) / float64(habitCount*days) * 100
}
