package probe

import (
	"net/http"
	"net/http/cookiejar"
	"sync/atomic"

	"golang.org/x/net/publicsuffix"
)

// countingClient wraps http.Client and counts round trips.
type countingClient struct {
	client    *http.Client
	transport *http.Transport
	requests  atomic.Int64
}

// newCountingClient creates a credentialed client with its own transport so
// idle connections can be released when the run ends.
func newCountingClient() *countingClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	client := &http.Client{Transport: transport}
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		client.Jar = jar
	}
	return &countingClient{client: client, transport: transport}
}

// Do performs the request and counts it.
func (c *countingClient) Do(req *http.Request) (*http.Response, error) {
	c.requests.Add(1)
	return c.client.Do(req)
}

// Requests returns how many round trips were attempted.
func (c *countingClient) Requests() int {
	return int(c.requests.Load())
}

// Close releases idle connections.
func (c *countingClient) Close() {
	c.transport.CloseIdleConnections()
}
