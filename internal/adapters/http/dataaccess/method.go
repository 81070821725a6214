package dataaccess

import (
	"fmt"
	"net/http"
	"strings"
)

// Method is the closed set of verbs the logical API accepts.
type Method uint8

const (
	methodInvalid Method = iota
	MethodGet
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
)

// ParseMethod maps an HTTP verb onto Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case http.MethodGet:
		return MethodGet, nil
	case http.MethodPost:
		return MethodPost, nil
	case http.MethodPut:
		return MethodPut, nil
	case http.MethodPatch:
		return MethodPatch, nil
	case http.MethodDelete:
		return MethodDelete, nil
	default:
		return methodInvalid, fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
	}
}

// String returns the HTTP verb.
func (m Method) String() string {
	switch m {
	case MethodGet:
		return http.MethodGet
	case MethodPost:
		return http.MethodPost
	case MethodPut:
		return http.MethodPut
	case MethodPatch:
		return http.MethodPatch
	case MethodDelete:
		return http.MethodDelete
	default:
		return "INVALID"
	}
}

// Valid reports whether m is one of the declared verbs.
func (m Method) Valid() bool {
	return m >= MethodGet && m <= MethodDelete
}
