package domain

type DaySummary struct {
	Date      string  `json:"date"`
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"completion_rate"`
}

type HabitLookup struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	IconKind string `json:"icon_kind"`
}

type CompletionStats struct {
	HabitID *int64  `json:"habit_id,omitempty"`
	Days    int     `json:"days"`
	From    string  `json:"from"`
	To      string  `json:"to"`
	Rate    float64 `json:"completion_rate"`
}

type RolloverReport struct {
	RunID        string  `json:"run_id"`
	Day          string  `json:"day"`
	Skipped      bool    `json:"skipped"`
	ResetHabits  []int64 `json:"reset_habits"`
	SeededHabits int     `json:"seeded_habits"`
	Attempts     int     `json:"attempts"`
}
