package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Sender delivers a single message; *Client implements it
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Notifier turns a contact submission into an email to the site owner
type Notifier struct {
	sender Sender
	logger *slog.Logger
	now    func() time.Time
}

// NewNotifier creates a notifier on top of the given sender
func NewNotifier(sender Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		logger: logger.With("component", "notifier"),
		now:    time.Now,
	}
}

// Subject builds the notification subject line for a visitor name
func Subject(name string) string {
	return fmt.Sprintf("New tutoring inquiry — %s", name)
}

// Body appends the reply-to trailer to the message text
func Body(email, message string) string {
	return fmt.Sprintf("%s\n\n---\nReply to: %s\n", message, email)
}

// Send dispatches one notification. It makes exactly one attempt and
// reports true only when the provider accepted the message; every failure
// is logged and reported as false.
func (n *Notifier) Send(ctx context.Context, name, email, message string) (ok bool) {
	start := n.now()
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("notification panicked", "panic", r)
			ok = false
		}
	}()

	id, err := n.sender.Send(ctx, Message{
		Subject: Subject(name),
		Text:    Body(email, message),
		ReplyTo: email,
	})
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			n.logger.Warn("email not sent, delivery is not configured", "reply_to", email)
			return false
		}
		n.logger.Error("failed to send notification",
			"error", err,
			"reply_to", email,
			"duration_ms", n.now().Sub(start).Milliseconds(),
		)
		return false
	}

	n.logger.Info("notification sent",
		"provider_id", id,
		"reply_to", email,
		"duration_ms", n.now().Sub(start).Milliseconds(),
	)
	return true
}
