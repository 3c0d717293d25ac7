package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"

	"github.com/jeancollas/paypal-sdk-go/internal/config"
	"github.com/jeancollas/paypal-sdk-go/internal/logger"
	"github.com/jeancollas/paypal-sdk-go/internal/requestfile"
	"github.com/jeancollas/paypal-sdk-go/internal/storage"
	"github.com/jeancollas/paypal-sdk-go/pkg/audit"
	"github.com/jeancollas/paypal-sdk-go/pkg/paypal"
)

// Runner replays request files against the REST API. It owns the client, the
// diagnostics store and the audit sinks.
type Runner struct {
	cfg    *config.Config
	client *paypal.Client
	fanout *audit.Fanout
	store  storage.Store
	log    logger.Logger
	out    io.Writer
}

// Result is written as one JSON line per executed request.
type Result struct {
	Name       string          `json:"name"`
	ContextID  string          `json:"context_id"`
	StatusCode int             `json:"status_code,omitempty"`
	DebugID    string          `json:"debug_id,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// NewRunner builds a runner from cfg. Results are written to out, stdout when nil.
// Extra client options are applied after the ones derived from cfg.
func NewRunner(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer, opts ...paypal.Option) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = os.Stdout
	}

	fanout, err := buildAuditFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	storeOpts := storage.Options{
		EntryTTL:        cfg.DiagnosticsTTL,
		CleanupInterval: cfg.DiagnosticsCleanupInterval,
	}
	store, err := storage.NewStore(cfg.DiagnosticsStore, cfg.DiagnosticsPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init diagnostics storage: %w", err)
	}
	log.InfoObj("diagnostics storage initialized", "storage_config", map[string]any{
		"type":                     cfg.DiagnosticsStore,
		"path":                     cfg.DiagnosticsPath,
		"entry_ttl_seconds":        int(cfg.DiagnosticsTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.DiagnosticsCleanupInterval.Seconds()),
	})

	clientOpts := []paypal.Option{
		paypal.WithDefaults(cfg.SDKConfig()),
		paypal.WithLogger(log),
		paypal.WithDiagnosticsRecorder(paypal.StoreRecorder{Store: store}),
	}
	if fanout.Size() > 0 {
		clientOpts = append(clientOpts, paypal.WithAuditor(fanout))
	}
	clientOpts = append(clientOpts, opts...)

	return &Runner{
		cfg:    cfg,
		client: paypal.NewClient(clientOpts...),
		fanout: fanout,
		store:  store,
		log:    log,
		out:    out,
	}, nil
}

func buildAuditFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*audit.Fanout, error) {
	if cfg.AuditSinksFile == "" {
		return audit.NewFanout(nil), nil
	}

	reg, err := audit.LoadRegistry(cfg.AuditSinksFile)
	if err != nil {
		return nil, fmt.Errorf("load audit sinks: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := audit.BuildAll(ctx, audit.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build audit sinks: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, s := range enabled {
		summaries = append(summaries, map[string]string{"id": s.ID, "type": s.Type})
	}
	log.InfoObj("audit sinks loaded", "audit_meta", map[string]any{
		"count": len(summaries),
		"sinks": summaries,
	})
	return audit.NewFanout(pubs), nil
}

// Run executes every request in f in order, each in a fresh execution context.
// It keeps going after a failed request and reports the failures at the end.
func (r *Runner) Run(ctx context.Context, f *requestfile.File) error {
	if r == nil || r.client == nil {
		return fmt.Errorf("runner is not initialized")
	}
	if f == nil || len(f.Requests) == 0 {
		return fmt.Errorf("no requests to run")
	}

	token := r.cfg.PayPalAccessToken
	if f.FetchToken {
		tok, err := r.fetchToken(ctx, f.Endpoint)
		if err != nil {
			return fmt.Errorf("fetch access token: %w", err)
		}
		token = tok
	}

	enc := json.NewEncoder(r.out)
	failed := 0
	for _, req := range f.Requests {
		if err := ctx.Err(); err != nil {
			return err
		}
		res := r.runOne(ctx, token, f.Endpoint, req)
		if res.Error != "" {
			failed++
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	r.log.InfoObj("request file completed", "run_meta", map[string]any{
		"requests":    len(f.Requests),
		"failed":      failed,
		"audit_sinks": r.fanout.SinkIDs(),
	})
	if failed > 0 {
		return fmt.Errorf("%d of %d requests failed", failed, len(f.Requests))
	}
	return nil
}

func (r *Runner) fetchToken(ctx context.Context, endpoint string) (string, error) {
	cfg := r.cfg.SDKConfig()
	if endpoint != "" {
		cfg[paypal.ConfigEndpoint] = endpoint
	}
	tok, err := paypal.FetchAccessToken(ctx, r.client, cfg)
	if err != nil {
		return "", err
	}
	r.log.InfoObj("access token issued", "token_meta", map[string]any{
		"app_id":     tok.AppID,
		"expires_in": tok.ExpiresIn,
		"debug_id":   tok.DebugID(),
	})
	return tok.Authorization(), nil
}

func (r *Runner) runOne(ctx context.Context, token, fileEndpoint string, req requestfile.Request) Result {
	ec := paypal.NewExecutionContext(token)
	req.Apply(ec)

	_, err := r.client.ExecuteText(ctx, ec, req.SDKRequest(fileEndpoint))

	res := Result{Name: req.Name, ContextID: ec.ID}
	if resp := paypal.LastResponseDetails(ec); resp != nil {
		res.StatusCode = resp.StatusCode
		res.DebugID = resp.Headers.Get(paypal.HeaderDebugID)
		res.Body = rawBody(resp.Body)
	}
	if err != nil {
		res.Error = err.Error()
		r.log.WarnObj("request failed", "request_error", map[string]any{
			"name":       req.Name,
			"context_id": ec.ID,
			"error":      err.Error(),
		})
	}
	return res
}

// rawBody keeps JSON bodies as-is and quotes anything else.
func rawBody(body string) json.RawMessage {
	if body == "" {
		return nil
	}
	if gjson.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}

// Close releases the diagnostics store and the audit sinks.
func (r *Runner) Close() {
	if r == nil {
		return
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := r.fanout.Close(); err != nil {
		r.log.ErrorObj("audit sinks close failed", "error", err)
	}
}
