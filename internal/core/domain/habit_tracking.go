package domain

import (
	"errors"
)

var (
	ErrTrackingNotFound = errors.New("no tracking row for this habit and date")
	ErrInvalidTracking  = errors.New("invalid habit tracking data")
)

type HabitTracking struct {
	ID      int64  `json:"track_id" db:"id"`
	HabitID int64  `json:"habit_id" db:"habit_id"`
	Date    string `json:"date" db:"day"`
	Status  bool   `json:"status" db:"status"`
}

func NewHabitTracking(habitID int64, date string) *HabitTracking {
	return &HabitTracking{
		HabitID: habitID,
		Date:    date,
		Status:  false,
	}
}

func (t *HabitTracking) Validate() error {
	if t.HabitID <= 0 {
		return errors.New("habit_id is required")
	}
	if _, err := ParseDay(t.Date); err != nil {
		return err
	}
	return nil
}
