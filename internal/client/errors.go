package client

import (
	"encoding/json"
	"net/http"

	pkgerrors "github.com/mateoreyes/drivehub-backend/pkg/errors"
)

// genericErrorMessage is surfaced when a failed response carries no
// structured body.
const genericErrorMessage = "Something went wrong"

// errorFromResponse turns a non-2xx response into a typed error. The message
// is extracted by checking, in order, an "error" field (string or object with
// a nested message), then "message", then "description".
func errorFromResponse(status int, body []byte) error {
	return pkgerrors.New(codeForStatus(status), extractMessage(body))
}

func extractMessage(body []byte) string {
	var envelope struct {
		Error       json.RawMessage `json:"error"`
		Message     string          `json:"message"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return genericErrorMessage
	}

	if len(envelope.Error) > 0 {
		var asString string
		if err := json.Unmarshal(envelope.Error, &asString); err == nil && asString != "" {
			return asString
		}
		var asObject struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &asObject); err == nil && asObject.Message != "" {
			return asObject.Message
		}
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	if envelope.Description != "" {
		return envelope.Description
	}
	return genericErrorMessage
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

// IsNotFound reports whether the error is a typed not-found result, letting
// callers render a dedicated missing-resource state rather than a generic
// failure banner.
func IsNotFound(err error) bool {
	typed := pkgerrors.As(err)
	return typed != nil && typed.Code() == pkgerrors.CodeNotFound
}
