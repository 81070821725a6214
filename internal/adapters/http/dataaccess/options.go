package dataaccess

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/okian/regmatrix/pkg/logger"
	"golang.org/x/net/publicsuffix"
)

// Option applies a configuration option to the Router.
type Option func(*Router)

// WithHTTPClient sets the transport used for network calls.
func WithHTTPClient(client Doer) Option {
	return func(r *Router) {
		if client != nil {
			r.client = client
		}
	}
}

// WithOrigin sets the scheme and host that relative paths resolve against.
func WithOrigin(origin *url.URL) Option {
	return func(r *Router) {
		if origin != nil {
			r.origin = origin
		}
	}
}

// WithLogger sets the diagnostic sink.
func WithLogger(l logger.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// newCredentialedClient returns a client that keeps session cookies across
// calls. It has no timeout of its own.
func newCredentialedClient() *http.Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return &http.Client{}
	}
	return &http.Client{Jar: jar}
}
