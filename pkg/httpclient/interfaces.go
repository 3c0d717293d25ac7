package httpclient

import (
	"context"
	"net/http"
	"time"
)

// Config map keys the transport reads when scoping a request handle.
const (
	ConfigTimeoutKey = "connectionTimeout"
	ConfigProxyKey   = "proxyAddress"
)

// Request is a transport request handle scoped to one resolved config and URI.
// Header keys are sent exactly as set.
type Request struct {
	Method  string
	URL     string
	Header  map[string]string
	Timeout time.Duration
	Proxy   string
}

// SetHeader stores a header under its verbatim name.
func (r *Request) SetHeader(key, value string) {
	if r.Header == nil {
		r.Header = make(map[string]string)
	}
	r.Header[key] = value
}

// Response is the minimal HTTP response contract the dispatcher needs.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
	Duration() time.Duration
}

// Transport abstracts the HTTP call so callers can inject fakes or a different client.
//
// Do returns a *sdkerrors.ConnectionError when no response was obtained and a
// *sdkerrors.HttpError alongside the response when the status is 400 or above.
type Transport interface {
	NewRequest(cfg map[string]string, uri string) (*Request, error)
	Do(ctx context.Context, req *Request, body []byte) (Response, error)
}
