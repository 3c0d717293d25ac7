package app

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeancollas/paypal-sdk-go/internal/config"
	"github.com/jeancollas/paypal-sdk-go/internal/logger"
	"github.com/jeancollas/paypal-sdk-go/internal/requestfile"
	"github.com/jeancollas/paypal-sdk-go/pkg/paypal"
)

func testConfig(t *testing.T, endpoint string) *config.Config {
	t.Helper()
	return &config.Config{
		PayPalMode:                 paypal.ModeSandbox,
		PayPalEndpoint:             endpoint,
		PayPalClientID:             "id",
		PayPalClientSecret:         "secret",
		HTTPTimeout:                5 * time.Second,
		DiagnosticsStore:           "bbolt",
		DiagnosticsPath:            filepath.Join(t.TempDir(), "diag", "diagnostics.db"),
		DiagnosticsTTL:             time.Hour,
		DiagnosticsCleanupInterval: time.Hour,
	}
}

func readResults(t *testing.T, out *bytes.Buffer) []Result {
	t.Helper()
	var results []Result
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var r Result
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("decode result line %q: %v", sc.Text(), err)
		}
		results = append(results, r)
	}
	return results
}

func TestRunnerFetchesTokenAndRecordsDiagnostics(t *testing.T) {
	var paymentAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/oauth2/token":
			_, _ = io.WriteString(w, `{"access_token":"A21AA","token_type":"Bearer","expires_in":3600}`)
		case "/v1/payments/payment/PAY-1":
			paymentAuth = r.Header.Get("Authorization")
			w.Header().Set(paypal.HeaderDebugID, "dbg-99")
			_, _ = io.WriteString(w, `{"id":"PAY-1","state":"approved"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, "missing")
		}
	}))
	defer srv.Close()

	sinksFile := filepath.Join(t.TempDir(), "sinks.yaml")
	if err := os.WriteFile(sinksFile, []byte("sinks:\n  - id: console\n    type: log\n"), 0o600); err != nil {
		t.Fatalf("write sinks: %v", err)
	}
	cfg := testConfig(t, srv.URL+"/")
	cfg.AuditSinksFile = sinksFile

	core, logs := observer.New(zapcore.DebugLevel)
	var out bytes.Buffer
	runner, err := NewRunner(context.Background(), cfg, logger.NewZapLogger(zap.New(core)), &out)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	err = runner.Run(context.Background(), &requestfile.File{
		FetchToken: true,
		Requests: []requestfile.Request{
			{Name: "get", Method: http.MethodGet, Path: "v1/payments/payment/PAY-1"},
			{Name: "missing", Method: http.MethodGet, Path: "v1/nope"},
		},
	})
	if err == nil {
		t.Fatalf("expected error reporting the failed request")
	}

	if paymentAuth != "Bearer A21AA" {
		t.Fatalf("payment call used Authorization %q", paymentAuth)
	}

	results := readResults(t, &out)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Error != "" || results[0].DebugID != "dbg-99" || results[0].StatusCode != http.StatusOK {
		t.Fatalf("unexpected success result %+v", results[0])
	}
	if string(results[0].Body) != `{"id":"PAY-1","state":"approved"}` {
		t.Fatalf("unexpected body %s", results[0].Body)
	}
	if results[1].Error == "" || results[1].StatusCode != http.StatusNotFound || string(results[1].Body) != `"missing"` {
		t.Fatalf("unexpected failure result %+v", results[1])
	}

	d, ok, err := paypal.LoadDiagnostics(runner.store, results[0].ContextID)
	if err != nil || !ok {
		t.Fatalf("stored diagnostics missing: ok=%v err=%v", ok, err)
	}
	if d.Request.Headers[paypal.HeaderAuthorization] != "[REDACTED]" {
		t.Fatalf("stored Authorization not redacted: %q", d.Request.Headers[paypal.HeaderAuthorization])
	}

	if logs.FilterMessage("paypal call completed").Len() < 2 {
		t.Fatalf("expected audit log entries for the token and payment calls")
	}
	if logs.FilterMessage("paypal call failed").Len() != 1 {
		t.Fatalf("expected one failed audit entry")
	}
}

func TestRunnerAppliesRequestSettings(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := testConfig(t, "https://unused.example.test/")
	cfg.DiagnosticsStore = "none"
	cfg.PayPalAccessToken = "Bearer configured"

	var out bytes.Buffer
	runner, err := NewRunner(context.Background(), cfg, nil, &out)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	err = runner.Run(context.Background(), &requestfile.File{
		Endpoint: srv.URL + "/",
		Requests: []requestfile.Request{{
			Name:      "void",
			Method:    http.MethodPost,
			Path:      "v1/payments/authorization/A-1/void",
			RequestID: "req-7",
			Headers:   map[string]string{"X-Trace": "t-1"},
		}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got.Get("Authorization") != "Bearer configured" {
		t.Fatalf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get(paypal.HeaderRequestID) != "req-7" || got.Get("X-Trace") != "t-1" {
		t.Fatalf("request settings not applied: %v", got)
	}
	if res := readResults(t, &out); len(res) != 1 || res[0].StatusCode != http.StatusNoContent || res[0].Body != nil {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestNewRunnerRejectsBadSetup(t *testing.T) {
	if _, err := NewRunner(context.Background(), nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}

	cfg := testConfig(t, "")
	cfg.DiagnosticsStore = "redis"
	if _, err := NewRunner(context.Background(), cfg, nil, io.Discard); err == nil {
		t.Fatalf("expected error for unsupported store")
	}

	cfg = testConfig(t, "")
	cfg.AuditSinksFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewRunner(context.Background(), cfg, nil, io.Discard); err == nil {
		t.Fatalf("expected error for missing sinks file")
	}
}

func TestRunnerFallsBackToBasicAuth(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.URL.Path+" "+r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"PAY-1"}`)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL+"/")
	cfg.DiagnosticsStore = "none"

	var out bytes.Buffer
	runner, err := NewRunner(context.Background(), cfg, nil, &out)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	defer runner.Close()

	err = runner.Run(context.Background(), &requestfile.File{
		Requests: []requestfile.Request{{Name: "get", Method: http.MethodGet, Path: "v1/payments/payment/PAY-1"}},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(got) != 1 || got[0] != "/v1/payments/payment/PAY-1 Basic aWQ6c2VjcmV0" {
		t.Fatalf("unexpected calls %v", got)
	}
	if res := readResults(t, &out); len(res) != 1 || res[0].Error != "" || res[0].StatusCode != http.StatusOK {
		t.Fatalf("unexpected results %+v", res)
	}
}
