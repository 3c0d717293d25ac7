package audit

import (
	"context"

	"github.com/jeancollas/paypal-sdk-go/internal/logger"
)

// logPublisher writes events to the structured logger.
type logPublisher struct {
	id  string
	log logger.Logger
}

func newLogPublisher(_ context.Context, cfg SinkConfig, log logger.Logger) (Publisher, error) {
	return &logPublisher{id: cfg.ID, log: logger.Ensure(log)}, nil
}

func (l *logPublisher) ID() string   { return l.id }
func (l *logPublisher) Type() string { return TypeLog }

func (l *logPublisher) Publish(_ context.Context, evt Event) error {
	if evt.Outcome == OutcomeFailure {
		l.log.WarnObj("paypal call failed", "audit_event", evt)
		return nil
	}
	l.log.InfoObj("paypal call completed", "audit_event", evt)
	return nil
}
