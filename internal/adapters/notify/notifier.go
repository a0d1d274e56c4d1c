// Package notify delivers reminder and rollover notifications.
package notify

import (
	"context"
	"time"
)

const (
	KindReminder = "reminder"
	KindRollover = "rollover"
)

type Notification struct {
	Kind   string    `json:"kind"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Slot   string    `json:"slot,omitempty"`
	Day    string    `json:"day,omitempty"`
	SentAt time.Time `json:"sent_at"`
	// Data carries kind-specific details, e.g. reset habit ids for a rollover.
	Data map[string]any `json:"data,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
	Close() error
}
