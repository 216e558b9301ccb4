package translator

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds reported by the DeepL API.
var (
	ErrEmptyAuthKey    = errors.New("deepl: auth key must be a non-empty string")
	ErrAuthorization   = errors.New("deepl: authorization failure, check auth key")
	ErrQuotaExceeded   = errors.New("deepl: quota for this billing period has been exceeded")
	ErrTooManyRequests = errors.New("deepl: too many requests")
	ErrBadRequest      = errors.New("deepl: bad request")
	ErrService         = errors.New("deepl: service error")
	ErrEmptyResponse   = errors.New("deepl: response contained no translations")
)

// statusQuotaExceeded is DeepL's non-standard quota status code.
const statusQuotaExceeded = 456

// Error is a non-2xx reply from the DeepL API.
type Error struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.kind, e.StatusCode)
	}
	return fmt.Sprintf("%v (status %d): %s", e.kind, e.StatusCode, e.Message)
}

// Unwrap returns the error kind so callers can use errors.Is.
func (e *Error) Unwrap() error {
	return e.kind
}

func newError(statusCode int, message string) *Error {
	var kind error
	switch statusCode {
	case http.StatusForbidden:
		kind = ErrAuthorization
	case statusQuotaExceeded:
		kind = ErrQuotaExceeded
	case http.StatusTooManyRequests:
		kind = ErrTooManyRequests
	case http.StatusBadRequest:
		kind = ErrBadRequest
	default:
		kind = ErrService
	}
	return &Error{StatusCode: statusCode, Message: message, kind: kind}
}
