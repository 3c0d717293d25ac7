package paypal

import (
	"fmt"
	"runtime"
	"strconv"

	"golang.org/x/text/encoding/charmap"
)

// SDKVersion is reported in the User-Agent header.
const SDKVersion = "1.0.0"

const sdkName = "paypal-sdk-go"

// UserAgentProvider supplies the static identification headers sent with every call.
type UserAgentProvider interface {
	Headers() map[string]string
}

// UserAgentFunc adapts a function to UserAgentProvider.
type UserAgentFunc func() map[string]string

func (f UserAgentFunc) Headers() map[string]string { return f() }

// DefaultUserAgent identifies the SDK and the Go runtime it runs on.
var DefaultUserAgent UserAgentProvider = platformUserAgent{}

type platformUserAgent struct{}

func (platformUserAgent) Headers() map[string]string {
	return map[string]string{
		HeaderUserAgent: fmt.Sprintf("PayPalSDK/%s %s (lang=Go;v=%s;bit=%s;os=%s_%s)",
			sdkName, SDKVersion, runtime.Version(), strconv.Itoa(strconv.IntSize), runtime.GOOS, runtime.GOARCH),
	}
}

// toLatin1 re-encodes s as ISO-8859-1, dropping runes that have no single-byte form.
func toLatin1(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			out = append(out, b)
		}
	}
	return string(out)
}
