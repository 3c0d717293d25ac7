package audit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jeancollas/paypal-sdk-go/internal/logger"
	"github.com/jeancollas/paypal-sdk-go/pkg/httpclient"
)

// Routing headers attached to every webhook delivery so receivers can filter
// without decoding the body.
const (
	headerAuditPrefix  = "X-Audit-"
	headerAuditEventID = "X-Audit-Event-Id"
	maxErrorSnippet    = 512
)

// webhookPublisher POSTs each call event as JSON to a configured URL.
type webhookPublisher struct {
	id           string
	method       string
	url          string
	headers      map[string]string
	failuresOnly bool
	client       *resty.Client
}

func newHTTPPublisher(_ context.Context, cfg SinkConfig, _ logger.Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("sink %q missing http configuration", cfg.ID)
	}

	return &webhookPublisher{
		id:           cfg.ID,
		method:       cfg.HTTP.Method,
		url:          cfg.HTTP.URL,
		headers:      cfg.HTTP.Headers,
		failuresOnly: cfg.HTTP.FailuresOnly,
		client:       httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	if w.failuresOnly && evt.Outcome != OutcomeFailure {
		return nil
	}

	resp, err := w.client.R().
		SetContext(ctx).
		SetHeaders(w.headers).
		SetHeaders(routingHeaders(evt)).
		SetHeader("Content-Type", "application/json").
		SetBody(evt).
		Execute(w.method, w.url)
	if err != nil {
		return fmt.Errorf("deliver event to %s: %w", w.url, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook rejected event with status %d: %s", resp.StatusCode(), errorSnippet(resp.Body()))
	}
	return nil
}

// routingHeaders exposes the event attributes as X-Audit-* headers. The event id
// joins the context id and the occurrence time so receivers can drop redeliveries.
func routingHeaders(evt Event) map[string]string {
	attrs := evt.attributes()
	out := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		if v == "" {
			continue
		}
		out[http.CanonicalHeaderKey(headerAuditPrefix+strings.ReplaceAll(k, "_", "-"))] = v
	}
	if evt.ContextID != "" {
		out[headerAuditEventID] = evt.ContextID + "/" + evt.OccurredAt.UTC().Format(time.RFC3339Nano)
	}
	return out
}

func errorSnippet(body []byte) string {
	if len(body) > maxErrorSnippet {
		body = body[:maxErrorSnippet]
	}
	return strings.TrimSpace(string(body))
}
