package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrHabitNotFound         = errors.New("habit not found")
	ErrHabitNameEmpty        = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong      = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescriptionEmpty = errors.New("habit description cannot be empty")
	ErrHabitDescTooLong      = errors.New("habit description is too long (max 500 chars)")
	ErrDuplicateName         = errors.New("a habit with this name already exists")
	ErrInvalidStreak         = errors.New("streak cannot be negative")
)

const (
	DefaultIcon = "default_icon"
	MaxNameLen  = 100
	MaxDescLen  = 500

	IconKindEmoji  = "emoji"
	IconKindSymbol = "symbol"
)

type Habit struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Icon          string    `json:"icon" db:"icon"`
	Streak        int       `json:"streak" db:"streak"`
	LongestStreak int       `json:"longest_streak" db:"longest_streak"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DayHabit is a habit joined with its tracking status for one calendar day.
type DayHabit struct {
	Habit
	Done bool `json:"done" db:"done"`
}

func validateNameAndDescription(name, description string) (string, string, error) {
	cleanName := strings.TrimSpace(name)
	if cleanName == "" {
		return "", "", ErrHabitNameEmpty
	}
	if len(cleanName) > MaxNameLen {
		return "", "", ErrHabitNameTooLong
	}

	cleanDesc := strings.TrimSpace(description)
	if cleanDesc == "" {
		return "", "", ErrHabitDescriptionEmpty
	}
	if len(cleanDesc) > MaxDescLen {
		return "", "", ErrHabitDescTooLong
	}

	return cleanName, cleanDesc, nil
}

func NewHabit(name, description, icon string, initialStreak int) (*Habit, error) {
	cleanName, cleanDesc, err := validateNameAndDescription(name, description)
	if err != nil {
		return nil, err
	}
	if initialStreak < 0 {
		return nil, ErrInvalidStreak
	}

	icon = strings.TrimSpace(icon)
	if icon == "" {
		icon = DefaultIcon
	}

	now := time.Now().UTC()

	return &Habit{
		Name:          cleanName,
		Description:   cleanDesc,
		Icon:          icon,
		Streak:        initialStreak,
		LongestStreak: initialStreak,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Update replaces the editable fields. The longest streak never moves down.
func (h *Habit) Update(name, description, icon string, streak int) error {
	cleanName, cleanDesc, err := validateNameAndDescription(name, description)
	if err != nil {
		return err
	}
	if streak < 0 {
		return ErrInvalidStreak
	}

	icon = strings.TrimSpace(icon)
	if icon == "" {
		icon = DefaultIcon
	}

	h.Name = cleanName
	h.Description = cleanDesc
	h.Icon = icon
	h.Streak = streak
	if h.Streak > h.LongestStreak {
		h.LongestStreak = h.Streak
	}
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) IconKind() string {
	if IsEmoji(h.Icon) {
		return IconKindEmoji
	}
	return IconKindSymbol
}

// IsEmoji reports whether text contains a pictograph, symbol or transport emoji.
func IsEmoji(text string) bool {
	for _, r := range text {
		switch {
		case r >= 0x1F300 && r <= 0x1F64F:
			return true
		case r >= 0x1F680 && r <= 0x1F6FF:
			return true
		case r >= 0x2600 && r <= 0x26FF:
			return true
		}
	}
	return false
}
