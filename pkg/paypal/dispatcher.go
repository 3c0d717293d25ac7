package paypal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jeancollas/paypal-sdk-go/pkg/audit"
	"github.com/jeancollas/paypal-sdk-go/pkg/httpclient"
	"github.com/jeancollas/paypal-sdk-go/pkg/sdkerrors"
)

// Request describes one call to the REST API.
type Request struct {
	Method string
	// Path is resolved against the endpoint, e.g. "v1/payments/payment".
	Path string
	// Payload is sent verbatim when it is a string or []byte, JSON-encoded otherwise,
	// and omitted when nil.
	Payload any
	// Endpoint overrides the endpoint resolved from config.
	Endpoint string
	// NoAuth strips the Authorization header.
	NoAuth bool
}

// Auditor receives one event per dispatched call.
type Auditor interface {
	Publish(ctx context.Context, evt audit.Event) (int, error)
}

// Client dispatches requests on behalf of execution contexts. It holds no
// per-call state and is safe for concurrent use.
type Client struct {
	transport httpclient.Transport
	codec     Codec
	userAgent UserAgentProvider
	defaults  ConfigMap
	log       Logger
	recorder  DiagnosticsRecorder
	auditor   Auditor
}

// Option customises a Client.
type Option func(*Client)

// WithTransport replaces the resty transport.
func WithTransport(t httpclient.Transport) Option { return func(c *Client) { c.transport = t } }

// WithCodec replaces the JSON codec.
func WithCodec(codec Codec) Option { return func(c *Client) { c.codec = codec } }

// WithUserAgent replaces the user-agent provider.
func WithUserAgent(ua UserAgentProvider) Option { return func(c *Client) { c.userAgent = ua } }

// WithDefaults layers cfg over DefaultConfig for every call.
func WithDefaults(cfg ConfigMap) Option {
	return func(c *Client) { c.defaults = MergeConfig(c.defaults, cfg) }
}

// WithLogger sets the logging sink.
func WithLogger(log Logger) Option { return func(c *Client) { c.log = log } }

// WithDiagnosticsRecorder mirrors every diagnostics snapshot to r.
func WithDiagnosticsRecorder(r DiagnosticsRecorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithAuditor publishes one audit event per call to a.
func WithAuditor(a Auditor) Option { return func(c *Client) { c.auditor = a } }

// NewClient builds a Client. Without options it uses the resty transport, the
// JSON codec and the default user agent.
func NewClient(opts ...Option) *Client {
	c := &Client{
		codec:     JSONCodec,
		userAgent: DefaultUserAgent,
		defaults:  DefaultConfig(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.transport == nil {
		c.transport = httpclient.NewRestyTransport()
	}
	if c.codec == nil {
		c.codec = JSONCodec
	}
	c.log = ensureLogger(c.log)
	return c
}

// ExecuteNone dispatches req and discards the response body.
func (c *Client) ExecuteNone(ctx context.Context, ec *ExecutionContext, req Request) error {
	if c == nil {
		return errNilClient()
	}
	_, err := c.dispatch(ctx, ec, req)
	return err
}

// ExecuteText dispatches req and returns the response body unchanged.
func (c *Client) ExecuteText(ctx context.Context, ec *ExecutionContext, req Request) (string, error) {
	if c == nil {
		return "", errNilClient()
	}
	res, err := c.dispatch(ctx, ec, req)
	if err != nil {
		return "", err
	}
	return string(res.body), nil
}

// Execute dispatches req and decodes the JSON response into a new T. A blank body
// decodes to nil. When *T is a Resource it receives the response's debug id.
func Execute[T any](ctx context.Context, c *Client, ec *ExecutionContext, req Request) (*T, error) {
	if c == nil {
		return nil, errNilClient()
	}
	res, err := c.dispatch(ctx, ec, req)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(res.body))) == 0 {
		return nil, nil
	}

	out := new(T)
	if err := c.codec.Unmarshal(res.body, out); err != nil {
		return nil, sdkerrors.Classify(fmt.Errorf("decode %T response: %w", out, err))
	}

	if r, ok := any(out).(Resource); ok {
		if id := debugID(res.header); id != "" {
			r.SetDebugID(id)
		}
	}
	return out, nil
}

func errNilClient() error { return sdkerrors.NewSDKError("client is nil", nil) }

type rawResult struct {
	status int
	header http.Header
	body   []byte
}

// call tracks what the audit event needs about an in-flight dispatch.
type call struct {
	method  string
	uri     string
	status  int
	debugID string
	started time.Time
}

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodHead:   {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
	http.MethodPatch:  {},
}

func (c *Client) dispatch(ctx context.Context, ec *ExecutionContext, req Request) (res *rawResult, err error) {
	if ec == nil {
		return nil, sdkerrors.NewSDKError("execution context is required", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cl := &call{method: strings.ToUpper(strings.TrimSpace(req.Method)), started: time.Now()}
	defer func() {
		err = sdkerrors.Classify(err)
		c.audit(ctx, ec, cl, err)
	}()

	if _, ok := allowedMethods[cl.method]; !ok {
		return nil, sdkerrors.NewSDKError(fmt.Sprintf("unsupported http method %q", req.Method), nil)
	}

	cfg := MergeConfig(c.defaults, ec.Config)

	headers, err := buildHeaders(ec, cfg, c.userAgent)
	if err != nil {
		return nil, err
	}
	if req.NoAuth {
		headers.Del(HeaderAuthorization)
	}

	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		endpoint = ResolveEndpoint(cfg)
	}

	uri, err := composeURI(endpoint, req.Path)
	if err != nil {
		return nil, sdkerrors.NewSDKError(err.Error(), err)
	}
	cl.uri = uri

	handle, err := c.transport.NewRequest(cfg, uri)
	if err != nil {
		return nil, fmt.Errorf("build transport request: %w", err)
	}
	handle.Method = cl.method

	contentType := DefaultContentType
	if ct, ok := headers.Pop(HeaderContentType); ok {
		contentType = ct
	}
	handle.SetHeader(HeaderContentType, contentType)

	if ua, ok := headers.Pop(HeaderUserAgent); ok {
		handle.SetHeader(HeaderUserAgent, toLatin1(ua))
	}

	for k, v := range headers {
		handle.SetHeader(k, v)
	}
	c.logHeaders(handle)

	body, err := c.encodePayload(req.Payload)
	if err != nil {
		return nil, err
	}

	resp, doErr := c.transport.Do(ctx, handle, body)
	c.record(ec, handle, body, resp)
	if resp != nil {
		cl.status = resp.StatusCode()
		cl.debugID = debugID(resp.Header())
	}
	if doErr != nil {
		return nil, doErr
	}
	if resp == nil {
		return nil, sdkerrors.NewConnectionError("transport returned no response", nil)
	}

	return &rawResult{status: resp.StatusCode(), header: resp.Header(), body: resp.Body()}, nil
}

// composeURI resolves path against endpoint and requires an absolute result.
func composeURI(endpoint, path string) (string, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return "", fmt.Errorf("invalid endpoint %q: must be an absolute url", endpoint)
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid resource path %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (c *Client) encodePayload(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(p), nil
	case []byte:
		return p, nil
	default:
		raw, err := c.codec.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		return raw, nil
	}
}

// record overwrites ec's diagnostic slot and mirrors it to the recorder.
func (c *Client) record(ec *ExecutionContext, handle *httpclient.Request, body []byte, resp httpclient.Response) {
	d := Diagnostics{
		Request: &RequestDetails{
			Method:  handle.Method,
			URL:     handle.URL,
			Headers: copyHeaders(handle.Header),
			Body:    string(body),
		},
		RecordedAt: time.Now().UTC(),
	}
	if resp != nil {
		d.Response = &ResponseDetails{
			StatusCode: resp.StatusCode(),
			Headers:    resp.Header().Clone(),
			Body:       string(resp.Body()),
			Duration:   resp.Duration(),
		}
	}
	ec.slot.store(d)

	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordDiagnostics(ec.ID, d); err != nil {
		c.log.WarnObj("diagnostics recorder failed", "diagnostics_error", map[string]any{
			"context_id": ec.ID,
			"error":      err.Error(),
		})
	}
}

func (c *Client) logHeaders(handle *httpclient.Request) {
	for k, v := range handle.Header {
		if http.CanonicalHeaderKey(k) == HeaderAuthorization {
			v = redacted
		}
		c.log.DebugObj("request header", "http_header", map[string]string{
			"name":  k,
			"value": v,
		})
	}
}

func (c *Client) audit(ctx context.Context, ec *ExecutionContext, cl *call, err error) {
	if c.auditor == nil || ec == nil {
		return
	}

	evt := audit.Event{
		ContextID:  ec.ID,
		RequestID:  ec.RequestID,
		Method:     cl.method,
		URL:        cl.uri,
		StatusCode: cl.status,
		DebugID:    cl.debugID,
		Outcome:    audit.OutcomeSuccess,
		DurationMs: time.Since(cl.started).Milliseconds(),
		OccurredAt: time.Now().UTC(),
	}
	if ec.MaskRequestID {
		evt.RequestID = ""
	}
	if err != nil {
		evt.Outcome = audit.OutcomeFailure
		evt.Error = err.Error()
	}

	if _, pubErr := c.auditor.Publish(ctx, evt); pubErr != nil {
		c.log.WarnObj("audit publish failed", "audit_error", map[string]any{
			"context_id": ec.ID,
			"error":      pubErr.Error(),
		})
	}
}

func debugID(h http.Header) string {
	if h == nil {
		return ""
	}
	return h.Get(HeaderDebugID)
}
