package audit

import "time"

// Outcomes recorded on an Event.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event describes one dispatched REST call. It never carries credentials or
// request/response bodies.
type Event struct {
	ContextID  string    `json:"context_id"`
	RequestID  string    `json:"request_id,omitempty"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	DebugID    string    `json:"debug_id,omitempty"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

// attributes returns the routing attributes attached to queue and topic messages.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{
		"context_id": e.ContextID,
		"outcome":    e.Outcome,
		"method":     e.Method,
	}
	if e.DebugID != "" {
		attrs["debug_id"] = e.DebugID
	}
	return attrs
}
