package mailer

import (
	"context"

	"github.com/dmitrijs2005/xbackend/internal/logging"
)

// LogTransport writes messages to the logger instead of sending them.
// Bodies contain live tokens and are only emitted at debug level.
type LogTransport struct {
	logger logging.Logger
}

func NewLogTransport(logger logging.Logger) *LogTransport {
	return &LogTransport{logger: logger.With("module", "mailer")}
}

func (t *LogTransport) Deliver(ctx context.Context, m Message) error {
	t.logger.Info(ctx, "mail queued", "to", m.To, "subject", m.Subject)
	t.logger.Debug(ctx, "mail body", "to", m.To, "text", m.Text)
	return nil
}
