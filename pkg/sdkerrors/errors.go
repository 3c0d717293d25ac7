// Package sdkerrors holds the typed failures surfaced by the request dispatcher.
package sdkerrors

import (
	"fmt"
	"strings"
)

// taxonomyError is implemented by every error type in this package. The classifier
// uses it to let already-typed failures through untouched.
type taxonomyError interface {
	error
	sdkTaxonomy()
}

// SDKError is the catch-all failure. It keeps the original error as cause.
type SDKError struct {
	Message string
	Cause   error
}

// NewSDKError builds an SDKError with the given message and optional cause.
func NewSDKError(msg string, cause error) *SDKError {
	return &SDKError{Message: msg, Cause: cause}
}

func (e *SDKError) Error() string {
	if e.Cause != nil && e.Message != e.Cause.Error() {
		return fmt.Sprintf("paypal sdk: %s: %v", e.Message, e.Cause)
	}
	return "paypal sdk: " + e.Message
}

func (e *SDKError) Unwrap() error { return e.Cause }
func (*SDKError) sdkTaxonomy()    {}

// ConnectionError reports a transport-level failure: refused connections, timeouts,
// cancelled contexts, unreadable responses.
type ConnectionError struct {
	Message string
	Cause   error
}

// NewConnectionError builds a ConnectionError wrapping cause.
func NewConnectionError(msg string, cause error) *ConnectionError {
	return &ConnectionError{Message: msg, Cause: cause}
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection error: %s: %v", e.Message, e.Cause)
	}
	return "connection error: " + e.Message
}

func (e *ConnectionError) Unwrap() error { return e.Cause }
func (*ConnectionError) sdkTaxonomy()    {}

// HttpError is a ConnectionError raised for a response with a non-success status.
// Response holds the raw body text exactly as received.
type HttpError struct {
	ConnectionError
	StatusCode int
	Response   string
}

// NewHttpError builds an HttpError for status with the raw response body.
func NewHttpError(status int, body string) *HttpError {
	return &HttpError{
		ConnectionError: ConnectionError{Message: fmt.Sprintf("remote server returned status %d", status)},
		StatusCode:      status,
		Response:        body,
	}
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, snippet(e.Response))
}

// Unwrap exposes the embedded ConnectionError so errors.As can match either type.
func (e *HttpError) Unwrap() error { return &e.ConnectionError }
func (*HttpError) sdkTaxonomy()    {}

// ErrorDetail is a single field-level issue inside a validation payload.
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationDetails is the structured body PayPal returns with a 400.
type ValidationDetails struct {
	Name            string        `json:"name"`
	Message         string        `json:"message"`
	InformationLink string        `json:"information_link"`
	DebugID         string        `json:"debug_id"`
	Details         []ErrorDetail `json:"details"`
}

// PaymentsValidationError is an HttpError whose 400 body parsed as a validation payload.
type PaymentsValidationError struct {
	HTTP    *HttpError
	Details ValidationDetails
}

func (e *PaymentsValidationError) Error() string {
	var b strings.Builder
	b.WriteString("payments validation error")
	if e.Details.Name != "" {
		b.WriteString(": ")
		b.WriteString(e.Details.Name)
	}
	if e.Details.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Details.Message)
	}
	for _, d := range e.Details.Details {
		fmt.Fprintf(&b, " [%s: %s]", d.Field, d.Issue)
	}
	return b.String()
}

func (e *PaymentsValidationError) Unwrap() error { return e.HTTP }
func (*PaymentsValidationError) sdkTaxonomy()    {}

// IdentityDetails is the OAuth-style body PayPal returns with a 401.
type IdentityDetails struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorURI         string `json:"error_uri"`
}

// IdentityError is an HttpError whose 401 body parsed as an identity payload.
type IdentityError struct {
	HTTP    *HttpError
	Details IdentityDetails
}

func (e *IdentityError) Error() string {
	if e.Details.ErrorDescription != "" {
		return fmt.Sprintf("identity error: %s: %s", e.Details.Error, e.Details.ErrorDescription)
	}
	return "identity error: " + e.Details.Error
}

func (e *IdentityError) Unwrap() error { return e.HTTP }
func (*IdentityError) sdkTaxonomy()    {}

// MissingCredentialError reports an absent client id or client secret.
type MissingCredentialError struct {
	Message string
}

func (e *MissingCredentialError) Error() string { return "missing credential: " + e.Message }
func (*MissingCredentialError) sdkTaxonomy()    {}

// InvalidCredentialError reports credentials that were present but could not be encoded.
type InvalidCredentialError struct {
	ClientID     string
	ClientSecret string
	Cause        error
}

func (e *InvalidCredentialError) Error() string {
	// The secret never makes it into the message.
	return fmt.Sprintf("invalid credential for client id %q: %v", e.ClientID, e.Cause)
}

func (e *InvalidCredentialError) Unwrap() error { return e.Cause }
func (*InvalidCredentialError) sdkTaxonomy()    {}

func snippet(body string) string {
	const maxLen = 512
	s := strings.TrimSpace(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
