// Package requestfile loads the request definitions replayed by paypalctl.
package requestfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeancollas/paypal-sdk-go/pkg/paypal"
)

// File is the top-level document of a request file.
type File struct {
	// Endpoint, when set, overrides the configured endpoint for every request.
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	// FetchToken exchanges the configured client credentials for a bearer token
	// before the first request.
	FetchToken bool      `json:"fetch_token" yaml:"fetch_token"`
	Requests   []Request `json:"requests" yaml:"requests"`
}

// Request is a single call.
type Request struct {
	Name          string            `json:"name" yaml:"name"`
	Method        string            `json:"method" yaml:"method"`
	Path          string            `json:"path" yaml:"path"`
	Payload       any               `json:"payload" yaml:"payload"`
	Endpoint      string            `json:"endpoint" yaml:"endpoint"`
	NoAuth        bool              `json:"no_auth" yaml:"no_auth"`
	Headers       map[string]string `json:"headers" yaml:"headers"`
	RequestID     string            `json:"request_id" yaml:"request_id"`
	MaskRequestID bool              `json:"mask_request_id" yaml:"mask_request_id"`
}

// Load reads a YAML or JSON request file.
func Load(path string) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("request file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}

	f, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes data using the decoder matching ext, or every known decoder when
// ext is empty.
func Parse(data []byte, ext string) (*File, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		ext string
		fn  func([]byte, any) error
	}{
		{ext: ".yaml", fn: yaml.Unmarshal},
		{ext: ".yml", fn: yaml.Unmarshal},
		{ext: ".json", fn: json.Unmarshal},
	}

	var (
		f       File
		decoded bool
	)
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		f = File{}
		if err := d.fn(data, &f); err == nil {
			decoded = true
			break
		}
	}
	if !decoded {
		return nil, errors.New("request file format not recognized (expected YAML or JSON)")
	}

	f.Endpoint = strings.TrimSpace(f.Endpoint)
	if len(f.Requests) == 0 {
		return nil, errors.New("request file declares no requests")
	}
	for i := range f.Requests {
		if err := f.Requests[i].normalize(i); err != nil {
			return nil, fmt.Errorf("requests[%d]: %w", i, err)
		}
	}
	return &f, nil
}

func (r *Request) normalize(idx int) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		r.Name = fmt.Sprintf("request-%d", idx+1)
	}
	r.Method = strings.ToUpper(strings.TrimSpace(r.Method))
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	r.Path = strings.TrimSpace(r.Path)
	if r.Path == "" {
		return fmt.Errorf("path is required for %q", r.Name)
	}
	r.Endpoint = strings.TrimSpace(r.Endpoint)
	r.RequestID = strings.TrimSpace(r.RequestID)
	return nil
}

// SDKRequest converts r into a dispatcher request. fileEndpoint applies when r
// sets no endpoint of its own.
func (r Request) SDKRequest(fileEndpoint string) paypal.Request {
	endpoint := r.Endpoint
	if endpoint == "" {
		endpoint = fileEndpoint
	}
	return paypal.Request{
		Method:   r.Method,
		Path:     r.Path,
		Payload:  r.Payload,
		Endpoint: endpoint,
		NoAuth:   r.NoAuth,
	}
}

// Apply copies the request's idempotency and header settings onto ec.
func (r Request) Apply(ec *paypal.ExecutionContext) {
	if r.RequestID != "" {
		ec.RequestID = r.RequestID
	}
	ec.MaskRequestID = r.MaskRequestID
	if ec.HTTPHeaders == nil {
		ec.HTTPHeaders = make(map[string]string, len(r.Headers))
	}
	for k, v := range r.Headers {
		ec.HTTPHeaders[k] = v
	}
}
