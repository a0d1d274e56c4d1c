package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
)

// LogNotifier writes notifications to the log. Used when no broker is set up.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: logger.OrNop(log).With(zap.String("component", "notifier"))}
}

func (n *LogNotifier) Notify(ctx context.Context, msg Notification) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}
	n.log.Info("notification",
		zap.String("kind", msg.Kind),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.String("slot", msg.Slot),
		zap.String("day", msg.Day),
		zap.Any("data", msg.Data),
	)
	return nil
}

func (n *LogNotifier) Close() error { return nil }
