package notify

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	subject string
	data    []byte
	err     error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.subject = subject
	f.data = data
	return f.err
}

func TestNATSNotifier_PublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	n := newNATSNotifier(pub, "streaks.events", nil)

	err := n.Notify(context.Background(), Notification{
		Kind:  KindReminder,
		Title: "Morning Reminder",
		Body:  "Time for your morning routine.",
		Slot:  "morning",
	})
	require.NoError(t, err)

	assert.Equal(t, "streaks.events.reminder", pub.subject)

	var got Notification
	require.NoError(t, json.Unmarshal(pub.data, &got))
	assert.Equal(t, "Morning Reminder", got.Title)
	assert.Equal(t, "morning", got.Slot)
	assert.False(t, got.SentAt.IsZero())
}

func TestNATSNotifier_PublishError(t *testing.T) {
	n := newNATSNotifier(&fakePublisher{err: errors.New("no responders")}, "streaks", nil)

	err := n.Notify(context.Background(), Notification{Kind: KindRollover})
	assert.ErrorContains(t, err, "no responders")
}

func TestNATSNotifier_CancelledContext(t *testing.T) {
	pub := &fakePublisher{}
	n := newNATSNotifier(pub, "streaks", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.Notify(ctx, Notification{}), context.Canceled)
	assert.Empty(t, pub.subject)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(nil)
	assert.NoError(t, n.Notify(context.Background(), Notification{Kind: KindRollover, Day: "2024-01-10"}))
	assert.NoError(t, n.Close())
}

func TestNATSNotifier_Integration(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		url = nats.DefaultURL
	}

	n, err := NewNATSNotifier(url, "streaks.test", nil)
	if err != nil {
		t.Skipf("Skipping NATS integration test: %v", err)
	}
	defer n.Close()

	sub, err := n.conn.SubscribeSync("streaks.test.>")
	require.NoError(t, err)
	require.NoError(t, n.conn.Flush())

	require.NoError(t, n.Notify(context.Background(), Notification{Kind: KindRollover, Day: "2024-01-10"}))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "streaks.test.rollover", msg.Subject)
}
