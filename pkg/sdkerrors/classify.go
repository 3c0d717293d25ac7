package sdkerrors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"
)

// Classify maps any failure escaping the dispatcher onto the taxonomy.
//
// Upgraded validation/identity errors and other taxonomy members pass through as-is.
// An HttpError with status 400 or 401 is upgraded when its body parses; otherwise the
// original error is returned unchanged. Anything else is wrapped in an SDKError.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var validationErr *PaymentsValidationError
	var identityErr *IdentityError
	if errors.As(err, &validationErr) || errors.As(err, &identityErr) {
		return err
	}

	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		if upgraded := upgrade(httpErr); upgraded != nil {
			return upgraded
		}
		return err
	}

	var typed taxonomyError
	if errors.As(err, &typed) {
		return err
	}

	return NewSDKError(err.Error(), err)
}

// ClassifyResponse is the pure (status, body) form of the classifier. It returns nil
// for success statuses, a validation or identity error when the body parses, and a
// plain HttpError otherwise.
func ClassifyResponse(status int, body string) error {
	if status >= 200 && status < 300 {
		return nil
	}
	httpErr := NewHttpError(status, body)
	if upgraded := upgrade(httpErr); upgraded != nil {
		return upgraded
	}
	return httpErr
}

func upgrade(httpErr *HttpError) error {
	switch httpErr.StatusCode {
	case http.StatusBadRequest:
		var details ValidationDetails
		if !parseObject(httpErr.Response, &details) {
			return nil
		}
		return &PaymentsValidationError{HTTP: httpErr, Details: details}
	case http.StatusUnauthorized:
		var details IdentityDetails
		if !parseObject(httpErr.Response, &details) {
			return nil
		}
		return &IdentityError{HTTP: httpErr, Details: details}
	default:
		return nil
	}
}

// parseObject decodes body into out only if body is a well-formed JSON object.
func parseObject(body string, out any) bool {
	if !gjson.Valid(body) || !gjson.Parse(body).IsObject() {
		return false
	}
	return json.Unmarshal([]byte(body), out) == nil
}
