package domain

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-day form used for every tracking row.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date format (must be YYYY-MM-DD)")

type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// AddDays shifts an ISO day by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return FormatDay(t.AddDate(0, 0, n)), nil
}

func Today(c Clock) string {
	return FormatDay(c.Now())
}

func Yesterday(c Clock) string {
	return FormatDay(c.Now().AddDate(0, 0, -1))
}
