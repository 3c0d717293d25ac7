package paypal

import (
	"strings"

	"github.com/jeancollas/paypal-sdk-go/pkg/sdkerrors"
)

// Header names and the default body media type.
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderRequestID     = "PayPal-Request-Id"
	HeaderDebugID       = "PayPal-Debug-Id"

	DefaultContentType = "application/json"
)

// Headers maps header names to values. Names compare case-insensitively and hold
// at most one entry each; the spelling of the last write is kept.
type Headers map[string]string

// Set replaces any entry whose name matches key regardless of case.
func (h Headers) Set(key, value string) {
	h.Del(key)
	h[key] = value
}

// Get looks key up regardless of case.
func (h Headers) Get(key string) (string, bool) {
	if v, ok := h[key]; ok {
		return v, true
	}
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

// Del removes every entry whose name matches key regardless of case.
func (h Headers) Del(key string) {
	for k := range h {
		if strings.EqualFold(k, key) {
			delete(h, k)
		}
	}
}

// Pop removes key and returns its value.
func (h Headers) Pop(key string) (string, bool) {
	v, ok := h.Get(key)
	if ok {
		h.Del(key)
	}
	return v, ok
}

// BuildHeaders assembles the outgoing header set for ec with the default
// user-agent provider. Credentials are read from ec.Config layered over
// DefaultConfig.
func BuildHeaders(ec *ExecutionContext) (Headers, error) {
	if ec == nil {
		return nil, sdkerrors.NewSDKError("execution context is required", nil)
	}
	return buildHeaders(ec, MergeConfig(DefaultConfig(), ec.Config), DefaultUserAgent)
}

// BuildHeaders assembles the outgoing header set for ec with the client's
// defaults and user-agent provider.
func (c *Client) BuildHeaders(ec *ExecutionContext) (Headers, error) {
	if c == nil {
		return nil, sdkerrors.NewSDKError("client is nil", nil)
	}
	if ec == nil {
		return nil, sdkerrors.NewSDKError("execution context is required", nil)
	}
	return buildHeaders(ec, MergeConfig(c.defaults, ec.Config), c.userAgent)
}

// buildHeaders applies, in order: authorization, idempotency id, user-agent
// entries, caller overrides. Caller overrides may replace any earlier entry,
// Authorization and Content-Type included. cfg is the merged config of the call.
func buildHeaders(ec *ExecutionContext, cfg ConfigMap, ua UserAgentProvider) (Headers, error) {
	if ec == nil {
		return nil, sdkerrors.NewSDKError("execution context is required", nil)
	}

	headers := make(Headers, 4+len(ec.HTTPHeaders))

	if ec.AccessToken != "" {
		headers.Set(HeaderAuthorization, ec.AccessToken)
	} else {
		token, err := EncodeBasic(cfg[ConfigClientID], cfg[ConfigClientSecret])
		if err != nil {
			return nil, err
		}
		headers.Set(HeaderAuthorization, "Basic "+token)
	}

	if !ec.MaskRequestID && ec.RequestID != "" {
		headers.Set(HeaderRequestID, ec.RequestID)
	}

	if ua != nil {
		for k, v := range ua.Headers() {
			headers.Set(k, v)
		}
	}

	for k, v := range ec.HTTPHeaders {
		headers.Set(k, v)
	}

	return headers, nil
}
