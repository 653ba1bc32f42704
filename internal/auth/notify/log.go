package notify

import (
	"context"
	"log/slog"
	"time"
)

// LogSender writes codes to the log instead of delivering them. Used when no
// SMTP relay is configured, which only makes sense in local development.
type LogSender struct {
	Logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{Logger: logger}
}

func (s *LogSender) SendCode(ctx context.Context, address, code string, validity time.Duration) error {
	s.Logger.Warn("no SMTP relay configured, logging verification code instead",
		"address", address,
		"code", code,
		"validity", validity.String(),
	)
	return nil
}
