package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jeancollas/paypal-sdk-go/pkg/sdkerrors"
)

const defaultTimeout = 360 * time.Second

// RestyTransport adapts resty.Client to the Transport interface. One resty client is
// kept per proxy address; timeouts are applied per request through the context.
type RestyTransport struct {
	mu      sync.Mutex
	clients map[string]*resty.Client
}

// NewRestyTransport creates an empty RestyTransport.
func NewRestyTransport() *RestyTransport {
	return &RestyTransport{clients: make(map[string]*resty.Client)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// NewRequest builds a request handle for uri using the timeout and proxy settings in cfg.
func (t *RestyTransport) NewRequest(cfg map[string]string, uri string) (*Request, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("request uri is empty")
	}

	req := &Request{
		Method:  http.MethodGet,
		URL:     uri,
		Header:  make(map[string]string),
		Timeout: defaultTimeout,
	}

	if raw := strings.TrimSpace(cfg[ConfigTimeoutKey]); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return nil, fmt.Errorf("invalid %s %q (must be positive milliseconds)", ConfigTimeoutKey, raw)
		}
		req.Timeout = time.Duration(ms) * time.Millisecond
	}

	if proxy := strings.TrimSpace(cfg[ConfigProxyKey]); proxy != "" {
		if _, err := url.Parse(proxy); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", ConfigProxyKey, proxy, err)
		}
		req.Proxy = proxy
	}

	return req, nil
}

// Do executes req with body and blocks until the response is read.
func (t *RestyTransport) Do(ctx context.Context, req *Request, body []byte) (Response, error) {
	if req == nil {
		return nil, sdkerrors.NewConnectionError("request handle is nil", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	r := t.clientFor(req.Proxy).R().SetContext(ctx)
	for k, v := range req.Header {
		r.SetHeaderVerbatim(k, v)
	}
	if body != nil {
		r.SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, sdkerrors.NewConnectionError(fmt.Sprintf("%s %s", req.Method, req.URL), err)
	}

	out := &restyResponseAdapter{resp: resp}
	if resp.IsError() {
		return out, sdkerrors.NewHttpError(resp.StatusCode(), string(resp.Body()))
	}
	return out, nil
}

func (t *RestyTransport) clientFor(proxy string) *resty.Client {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.clients == nil {
		t.clients = make(map[string]*resty.Client)
	}
	if c, ok := t.clients[proxy]; ok {
		return c
	}
	// Per-request timeouts come from the context, so the base client has none.
	c := newRestyBaseClient(0)
	if proxy != "" {
		c.SetProxy(proxy)
	}
	t.clients[proxy] = c
	return c
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte            { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int         { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header     { return r.resp.Header() }
func (r *restyResponseAdapter) Duration() time.Duration { return r.resp.Time() }

var _ Transport = (*RestyTransport)(nil)
