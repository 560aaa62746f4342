package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// LogSender records notifications in the log instead of sending them.
// It backs the SMS channel and the e-mail channel when no SMTP server is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a sender that only writes to logger.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LogSender{logger: logger}
}

// Send logs the message.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return ErrRecipientRequired
	}

	s.logger.InfoContext(ctx, "notification",
		"channel", msg.Channel,
		"to", msg.To,
		"order_id", msg.OrderID,
		"status", msg.Status.String(),
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
