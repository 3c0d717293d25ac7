package paypal

import (
	"sync"

	"github.com/google/uuid"
)

// ExecutionContext carries the credentials, config and idempotency settings of a
// logical caller. It also owns that caller's diagnostic slot, so it must be shared by
// pointer and never copied after first use.
type ExecutionContext struct {
	// ID keys the context's diagnostics when they are mirrored to a store.
	ID string
	// AccessToken, when non-empty, is sent verbatim as the Authorization value.
	AccessToken string
	// Config holds endpoint, mode and client credentials.
	Config ConfigMap
	// RequestID is sent as the idempotency header unless MaskRequestID is set.
	RequestID     string
	MaskRequestID bool
	// HTTPHeaders are applied last and overwrite any same-named header.
	HTTPHeaders map[string]string

	slot diagnosticSlot
}

// NewExecutionContext returns a context with a fresh id and request id.
func NewExecutionContext(accessToken string) *ExecutionContext {
	return &ExecutionContext{
		ID:          uuid.NewString(),
		AccessToken: accessToken,
		Config:      ConfigMap{},
		RequestID:   uuid.NewString(),
		HTTPHeaders: map[string]string{},
	}
}

// ResetRequestID issues a new idempotency request id and returns it.
func (ec *ExecutionContext) ResetRequestID() string {
	ec.RequestID = uuid.NewString()
	return ec.RequestID
}

// diagnosticSlot holds the last request/response pair seen by one context.
type diagnosticSlot struct {
	mu   sync.RWMutex
	last Diagnostics
}

func (s *diagnosticSlot) store(d Diagnostics) {
	s.mu.Lock()
	s.last = d
	s.mu.Unlock()
}

func (s *diagnosticSlot) load() Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
