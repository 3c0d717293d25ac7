package paypal

import (
	"context"
	"net/http"
	"time"

	"github.com/jeancollas/paypal-sdk-go/pkg/sdkerrors"
)

const (
	tokenPath        = "v1/oauth2/token"
	formContentType  = "application/x-www-form-urlencoded"
	clientCredsGrant = "grant_type=client_credentials"
	// Tokens are treated as expired slightly early to absorb clock skew.
	tokenExpirySkew = 2 * time.Minute
)

// AccessToken is the body of a client-credentials token response.
type AccessToken struct {
	ResourceBase
	Scope       string `json:"scope"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	AppID       string `json:"app_id"`
	ExpiresIn   int    `json:"expires_in"`
	Nonce       string `json:"nonce"`

	IssuedAt time.Time `json:"-"`
}

// Authorization returns the value to use as an ExecutionContext access token.
func (t *AccessToken) Authorization() string {
	return t.TokenType + " " + t.AccessToken
}

// Expired reports whether the token should be refreshed at now.
func (t *AccessToken) Expired(now time.Time) bool {
	if t.ExpiresIn <= 0 {
		return true
	}
	return !now.Before(t.IssuedAt.Add(time.Duration(t.ExpiresIn)*time.Second - tokenExpirySkew))
}

// FetchAccessToken exchanges the client id and secret in cfg for an access token.
// The call runs in its own execution context with Basic authorization, a form
// body and no idempotency header.
func FetchAccessToken(ctx context.Context, c *Client, cfg ConfigMap) (*AccessToken, error) {
	ec := NewExecutionContext("")
	ec.Config = cfg
	ec.MaskRequestID = true
	ec.HTTPHeaders[HeaderContentType] = formContentType

	token, err := Execute[AccessToken](ctx, c, ec, Request{
		Method:  http.MethodPost,
		Path:    tokenPath,
		Payload: clientCredsGrant,
	})
	if err != nil {
		return nil, err
	}
	if token == nil || token.AccessToken == "" {
		return nil, sdkerrors.NewSDKError("token response carried no access_token", nil)
	}
	token.IssuedAt = time.Now()
	return token, nil
}
