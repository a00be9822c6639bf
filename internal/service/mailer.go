package service

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers one-time reset codes. Real delivery is out of scope for
// the core; the default implementation only logs.
type Mailer interface {
	SendResetCode(ctx context.Context, email, code string) error
}

// LogMailer is the development delivery channel: it logs the send and
// succeeds. The code itself is never logged.
type LogMailer struct {
	logger *zap.Logger
	from   string
}

// NewLogMailer builds the stub channel.
func NewLogMailer(logger *zap.Logger, from string) *LogMailer {
	return &LogMailer{logger: logger, from: from}
}

// SendResetCode logs the delivery attempt.
func (m *LogMailer) SendResetCode(_ context.Context, email, _ string) error {
	m.logger.Info("reset code issued",
		zap.String("from", m.from),
		zap.String("to", email))
	return nil
}
