package dataaccess

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds for data-access errors.
var (
	ErrStatus            = errors.New("unsuccessful response status")
	ErrUnsupportedMethod = errors.New("unsupported method")
	ErrEncodePayload     = errors.New("encode payload failed")
	ErrDecode            = errors.New("response is not valid JSON")
	ErrNoOrigin          = errors.New("origin is not configured")
)

// StatusError is returned when the backend or the static host answers with a
// non-2xx status. Its message is "<status>: <body or reason phrase>".
type StatusError struct {
	StatusCode int
	Body       string
}

func newStatusError(code int, body []byte) *StatusError {
	return &StatusError{StatusCode: code, Body: string(body)}
}

func (e *StatusError) Error() string {
	msg := e.Body
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, msg)
}

// Is makes errors.Is(err, ErrStatus) hold for every StatusError.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus
}

// IsUnauthorized reports whether err is a 401 StatusError.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}
