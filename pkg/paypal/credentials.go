package paypal

import (
	"encoding/base64"
	"errors"
	"unicode/utf8"

	"github.com/jeancollas/paypal-sdk-go/pkg/sdkerrors"
)

var errCredentialNotUTF8 = errors.New("credential is not valid UTF-8")

// EncodeBasic returns base64("{clientID}:{clientSecret}") for a Basic authorization
// header. The id is checked before the secret.
func EncodeBasic(clientID, clientSecret string) (string, error) {
	if clientID == "" {
		return "", &sdkerrors.MissingCredentialError{Message: "clientId is required for basic authorization"}
	}
	if clientSecret == "" {
		return "", &sdkerrors.MissingCredentialError{Message: "clientSecret is required for basic authorization"}
	}

	if !utf8.ValidString(clientID) || !utf8.ValidString(clientSecret) {
		return "", &sdkerrors.InvalidCredentialError{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Cause:        errCredentialNotUTF8,
		}
	}

	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret)), nil
}
