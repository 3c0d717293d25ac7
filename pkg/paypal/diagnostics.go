package paypal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RequestDetails describes the most recent outgoing request of a context.
type RequestDetails struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body,omitempty"`
}

// ResponseDetails describes the most recent response received by a context.
type ResponseDetails struct {
	StatusCode int           `json:"status_code"`
	Headers    http.Header   `json:"headers"`
	Body       string        `json:"body,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Diagnostics is the snapshot written after every call. Response is nil when the
// transport failed before a response arrived.
type Diagnostics struct {
	Request    *RequestDetails  `json:"request,omitempty"`
	Response   *ResponseDetails `json:"response,omitempty"`
	RecordedAt time.Time        `json:"recorded_at"`
}

// LastRequestDetails returns a copy of the last request issued from ec, or nil.
func LastRequestDetails(ec *ExecutionContext) *RequestDetails {
	if ec == nil {
		return nil
	}
	d := ec.slot.load()
	if d.Request == nil {
		return nil
	}
	cp := *d.Request
	cp.Headers = copyHeaders(d.Request.Headers)
	return &cp
}

// LastResponseDetails returns a copy of the last response received by ec, or nil.
func LastResponseDetails(ec *ExecutionContext) *ResponseDetails {
	if ec == nil {
		return nil
	}
	d := ec.slot.load()
	if d.Response == nil {
		return nil
	}
	cp := *d.Response
	cp.Headers = d.Response.Headers.Clone()
	return &cp
}

// DiagnosticsRecorder receives every snapshot after it is written to the context.
type DiagnosticsRecorder interface {
	RecordDiagnostics(contextID string, d Diagnostics) error
}

// KeyValueStore is the persistence surface StoreRecorder writes through.
type KeyValueStore interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, bool, error)
}

// StoreRecorder mirrors snapshots into a KeyValueStore keyed by context id, with
// the Authorization value redacted.
type StoreRecorder struct {
	Store KeyValueStore
}

// RecordDiagnostics overwrites the stored snapshot for contextID.
func (r StoreRecorder) RecordDiagnostics(contextID string, d Diagnostics) error {
	if r.Store == nil || contextID == "" {
		return nil
	}
	if d.Request != nil {
		req := *d.Request
		req.Headers = redactHeaders(req.Headers)
		d.Request = &req
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal diagnostics: %w", err)
	}
	return r.Store.Put(contextID, raw)
}

// LoadDiagnostics reads back a snapshot written by StoreRecorder.
func LoadDiagnostics(store KeyValueStore, contextID string) (Diagnostics, bool, error) {
	raw, ok, err := store.Get(contextID)
	if err != nil || !ok {
		return Diagnostics{}, false, err
	}
	var d Diagnostics
	if err := json.Unmarshal(raw, &d); err != nil {
		return Diagnostics{}, false, fmt.Errorf("unmarshal diagnostics: %w", err)
	}
	return d, true, nil
}

const redacted = "[REDACTED]"

func redactHeaders(h map[string]string) map[string]string {
	out := copyHeaders(h)
	for k := range out {
		if http.CanonicalHeaderKey(k) == HeaderAuthorization {
			out[k] = redacted
		}
	}
	return out
}

func copyHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
