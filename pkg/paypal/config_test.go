package paypal

import (
	"strings"
	"testing"
)

func TestResolveEndpointExplicitWins(t *testing.T) {
	cases := map[string]string{
		"https://example.test":     "https://example.test/",
		"https://example.test/":    "https://example.test/",
		"https://example.test///":  "https://example.test/",
		" https://example.test/v1": "https://example.test/v1/",
	}
	for in, want := range cases {
		got := ResolveEndpoint(ConfigMap{ConfigEndpoint: in, ConfigMode: ModeLive})
		if got != want {
			t.Fatalf("ResolveEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveEndpointModes(t *testing.T) {
	cases := map[string]string{
		ModeLive:                LiveEndpoint,
		ModeSandbox:             SandboxEndpoint,
		ModeSecurityTestSandbox: SecurityTestSandboxEndpoint,
		"LIVE":                  LiveEndpoint,
		"staging":               SandboxEndpoint,
		"":                      SandboxEndpoint,
	}
	for mode, want := range cases {
		if got := ResolveEndpoint(ConfigMap{ConfigMode: mode}); got != want {
			t.Fatalf("mode %q: got %q, want %q", mode, got, want)
		}
	}
	if got := ResolveEndpoint(nil); got != SandboxEndpoint {
		t.Fatalf("nil config: got %q", got)
	}
}

func TestResolveEndpointSingleTrailingSlash(t *testing.T) {
	for _, cfg := range []ConfigMap{
		{ConfigEndpoint: "https://a.test//"},
		{ConfigMode: ModeLive},
		{},
	} {
		got := ResolveEndpoint(cfg)
		if !strings.HasSuffix(got, "/") || strings.HasSuffix(got, "//") {
			t.Fatalf("endpoint %q must end with exactly one slash", got)
		}
	}
}

func TestMergeConfig(t *testing.T) {
	merged := MergeConfig(DefaultConfig(), ConfigMap{ConfigMode: ModeLive, ConfigConnectionTimeout: ""})
	if merged[ConfigMode] != ModeLive {
		t.Fatalf("expected override to win, got %q", merged[ConfigMode])
	}
	if merged[ConfigConnectionTimeout] != defaultConnectionTimeoutMs {
		t.Fatalf("expected empty override to keep default, got %q", merged[ConfigConnectionTimeout])
	}
}
