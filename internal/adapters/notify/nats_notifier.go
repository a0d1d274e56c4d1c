package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/logger"
)

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes each notification as JSON on <subject>.<kind>.
type NATSNotifier struct {
	conn    *nats.Conn
	pub     publisher
	subject string
	log     *zap.Logger
}

func NewNATSNotifier(url, subject string, log *zap.Logger) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("kanso-streak-engine"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	n := newNATSNotifier(conn, subject, log)
	n.conn = conn
	n.log.Info("nats_notifier_connected", zap.String("url", url), zap.String("subject", subject))
	return n, nil
}

func newNATSNotifier(pub publisher, subject string, log *zap.Logger) *NATSNotifier {
	return &NATSNotifier{
		pub:     pub,
		subject: subject,
		log:     logger.OrNop(log).With(zap.String("component", "notifier")),
	}
}

func (n *NATSNotifier) Subject(kind string) string {
	if kind == "" {
		return n.subject
	}
	return n.subject + "." + kind
}

func (n *NATSNotifier) Notify(ctx context.Context, msg Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	subject := n.Subject(msg.Kind)
	if err := n.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.log.Debug("notification_published", zap.String("subject", subject), zap.String("title", msg.Title))
	return nil
}

func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}
