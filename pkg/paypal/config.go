package paypal

import (
	"strings"

	"github.com/jeancollas/paypal-sdk-go/pkg/httpclient"
)

// ConfigMap holds string-keyed SDK settings. It is read-only to the SDK.
type ConfigMap map[string]string

// Recognised config keys.
const (
	ConfigEndpoint          = "endpoint"
	ConfigMode              = "mode"
	ConfigClientID          = "clientId"
	ConfigClientSecret      = "clientSecret"
	ConfigConnectionTimeout = httpclient.ConfigTimeoutKey
	ConfigProxyAddress      = httpclient.ConfigProxyKey
)

// Deployment modes.
const (
	ModeLive                = "live"
	ModeSandbox             = "sandbox"
	ModeSecurityTestSandbox = "security-test-sandbox"
)

// Fixed REST endpoints per deployment mode.
const (
	LiveEndpoint                = "https://api.paypal.com/"
	SandboxEndpoint             = "https://api.sandbox.paypal.com/"
	SecurityTestSandboxEndpoint = "https://test-api.sandbox.paypal.com/"
)

const defaultConnectionTimeoutMs = "360000"

// DefaultConfig returns the settings every call starts from.
func DefaultConfig() ConfigMap {
	return ConfigMap{
		ConfigMode:              ModeSandbox,
		ConfigConnectionTimeout: defaultConnectionTimeoutMs,
	}
}

// MergeConfig layers overrides on top of base and returns a new map. Empty override
// values do not mask a base value.
func MergeConfig(base, overrides ConfigMap) ConfigMap {
	out := make(ConfigMap, len(base)+len(overrides))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overrides {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// ResolveEndpoint picks the REST endpoint for cfg. An explicit endpoint wins, then a
// recognised mode, then the sandbox. The result always ends with exactly one "/".
func ResolveEndpoint(cfg ConfigMap) string {
	if ep := strings.TrimSpace(cfg[ConfigEndpoint]); ep != "" {
		return withTrailingSlash(ep)
	}

	switch strings.ToLower(strings.TrimSpace(cfg[ConfigMode])) {
	case ModeLive:
		return LiveEndpoint
	case ModeSecurityTestSandbox:
		return SecurityTestSandboxEndpoint
	default:
		return SandboxEndpoint
	}
}

func withTrailingSlash(s string) string {
	return strings.TrimRight(s, "/") + "/"
}
