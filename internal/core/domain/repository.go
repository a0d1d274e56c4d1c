package domain

import (
	"context"
)

type HabitStore interface {
	// CreateHabit persists a habit and assigns its ID.
	CreateHabit(ctx context.Context, habit *Habit) error

	GetHabit(ctx context.Context, id int64) (*Habit, error)

	// UpdateHabit rewrites name, description, icon and streak. The longest
	// streak is raised to the new streak when exceeded.
	UpdateHabit(ctx context.Context, habit *Habit) error

	// DeleteHabit removes the habit together with its tracking rows.
	DeleteHabit(ctx context.Context, id int64) error

	// ListHabitsForDay returns all habits ordered by their status on day
	// (done first), then by id.
	ListHabitsForDay(ctx context.Context, day string) ([]*DayHabit, error)

	ListHabits(ctx context.Context) ([]*Habit, error)
	ListHabitTitles(ctx context.Context) ([]string, error)
	ListHabitIDs(ctx context.Context) ([]int64, error)
	CountHabits(ctx context.Context) (int, error)

	HabitExists(ctx context.Context, name string) (bool, error)
	HabitIDByName(ctx context.Context, name string) (int64, error)
	IconByName(ctx context.Context, name string) (string, error)

	IncrementStreak(ctx context.Context, id int64) error

	// DecrementStreak lowers the streak by one, never below zero.
	DecrementStreak(ctx context.Context, id int64) error
	ResetStreak(ctx context.Context, id int64) error

	// RaiseLongestStreak sets longest_streak = streak when streak is larger.
	// It reports whether the row changed.
	RaiseLongestStreak(ctx context.Context, id int64) (bool, error)

	MaxLongestStreak(ctx context.Context) (int, error)
}

type TrackingStore interface {
	// InsertTracking writes the row unless one already exists for the same
	// habit and day. It reports whether a row was written.
	InsertTracking(ctx context.Context, tracking *HabitTracking) (bool, error)

	GetTracking(ctx context.Context, habitID int64, day string) (*HabitTracking, error)
	SetTrackingStatus(ctx context.Context, habitID int64, day string, status bool) error

	ListTrackingsForDay(ctx context.Context, day string) ([]*HabitTracking, error)
	ListTrackingsForHabit(ctx context.Context, habitID int64) ([]*HabitTracking, error)
	ListAllTrackings(ctx context.Context) ([]*HabitTracking, error)

	CountTrackingsForDay(ctx context.Context, day string) (int, error)
	CountCompletedOnDay(ctx context.Context, day string) (int, error)

	// HabitIDsNotDoneOn lists habits whose row for day is false or missing.
	HabitIDsNotDoneOn(ctx context.Context, day string) ([]int64, error)

	DeleteTrackingsForHabit(ctx context.Context, habitID int64) error
}

type RolloverLedger interface {
	// LastRollover returns the most recent completed rollover day, or "" if none.
	LastRollover(ctx context.Context) (string, error)
	// HasRollover reports whether a rollover for exactly day has completed.
	HasRollover(ctx context.Context, day string) (bool, error)
	RecordRollover(ctx context.Context, day string) error
}

// Store is the full persistence handle injected into both repositories.
type Store interface {
	HabitStore
	TrackingStore
	RolloverLedger
	Ping(ctx context.Context) error
	Close() error
}
