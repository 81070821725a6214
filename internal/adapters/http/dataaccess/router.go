// Package dataaccess routes logical API calls either to a live backend, to a
// precomputed static JSON snapshot, or to a simulated write, depending on the
// deployment the call is made from.
package dataaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/regmatrix/internal/domain/deploy"
	"github.com/okian/regmatrix/pkg/logger"
	"github.com/okian/regmatrix/pkg/metrics"
)

// Namespaces swapped when a logical path is turned into a snapshot path.
const (
	apiNamespace    = "/api/"
	dataNamespace   = "/data/"
	snapshotSuffix  = ".json"
	contentTypeJSON = "application/json"
)

// Outcome labels for router metrics.
const (
	outcomeOK             = "ok"
	outcomeStatusError    = "status_error"
	outcomeTransportError = "transport_error"
	outcomeSimulated      = "simulated"
	outcomeNull           = "unauthorized_null"
)

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Router is the data-access shim. It is stateless per call and safe for
// concurrent use.
type Router struct {
	deployment deploy.Provider
	client     Doer
	origin     *url.URL
	logger     logger.Logger
}

// NewRouter creates a Router that consults deployment on every call.
func NewRouter(deployment deploy.Provider, opts ...Option) *Router {
	r := &Router{
		deployment: deployment,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = newCredentialedClient()
	}
	if r.logger == nil {
		r.logger = logger.Nop()
	}
	return r
}

// StaticPath turns a logical path into its snapshot path by swapping the first
// "/api/" for "/data/" and appending ".json".
func StaticPath(path string) string {
	return strings.Replace(path, apiNamespace, dataNamespace, 1) + snapshotSuffix
}

// ResolveStatic returns the snapshot location for path under d, including the
// deployment's base path.
func ResolveStatic(d deploy.Context, path string) string {
	return d.ResolvedBasePath() + StaticPath(path)
}

// Send issues a logical request. In a static deployment reads are served from
// snapshots and writes are simulated; a simulated write never fails.
func (r *Router) Send(ctx context.Context, method Method, path string, payload any) (*Envelope, error) {
	if !method.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}

	d := r.deployment.Deployment(ctx)
	if d.Mode() == deploy.ModeDynamic {
		return r.dynamic(ctx, method, path, payload)
	}

	switch method {
	case MethodGet:
		return r.static(ctx, d, path)
	case MethodPost, MethodPut, MethodPatch, MethodDelete:
		return r.simulate(ctx, method, path, payload), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
}

// dynamic performs the real network call and fails on a non-2xx status.
func (r *Router) dynamic(ctx context.Context, method Method, path string, payload any) (*Envelope, error) {
	start := time.Now()
	env, err := r.do(ctx, method, path, payload)
	if err != nil {
		r.observe(deploy.ModeDynamic, method, outcomeTransportError, start)
		return nil, err
	}
	if !env.OK() {
		r.observe(deploy.ModeDynamic, method, outcomeStatusError, start)
		return nil, newStatusError(env.Status, env.Body)
	}
	r.observe(deploy.ModeDynamic, method, outcomeOK, start)
	return env, nil
}

// static fetches the snapshot that stands in for a GET.
func (r *Router) static(ctx context.Context, d deploy.Context, path string) (*Envelope, error) {
	start := time.Now()
	target := ResolveStatic(d, path)

	env, err := r.do(ctx, MethodGet, target, nil)
	if err != nil {
		r.observe(deploy.ModeStatic, MethodGet, outcomeTransportError, start)
		metrics.RecordStaticFetchFailure()
		return nil, err
	}
	if !env.OK() {
		r.observe(deploy.ModeStatic, MethodGet, outcomeStatusError, start)
		metrics.RecordStaticFetchFailure()
		return nil, newStatusError(env.Status, env.Body)
	}
	r.observe(deploy.ModeStatic, MethodGet, outcomeOK, start)
	return env, nil
}

// simulate records the attempted write and answers with a synthetic success.
// The payload is not inspected.
func (r *Router) simulate(ctx context.Context, method Method, path string, payload any) *Envelope {
	start := time.Now()
	r.logger.Info(ctx, "write simulated on static deployment",
		logger.String("simulation_id", uuid.NewString()),
		logger.String("method", method.String()),
		logger.String("path", path),
		logger.Any("payload", payload),
	)
	metrics.RecordSimulatedWrite(method.String())
	r.observe(deploy.ModeStatic, method, outcomeSimulated, start)
	return simulatedEnvelope()
}

// do sends one request and reads the whole body. Transport errors from the
// client are returned unchanged.
func (r *Router) do(ctx context.Context, method Method, path string, payload any) (*Envelope, error) {
	target, err := r.resolve(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodePayload, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method.String(), target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	r.logger.Debug(ctx, "sending request",
		logger.String("method", method.String()),
		logger.String("url", target),
	)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   respBody,
	}, nil
}

// resolve turns a path into an absolute URL against the origin. Absolute
// URLs pass through.
func (r *Router) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	if r.origin == nil {
		return "", fmt.Errorf("%w: cannot resolve %q", ErrNoOrigin, path)
	}
	return r.origin.ResolveReference(ref).String(), nil
}

func (r *Router) observe(mode deploy.Mode, method Method, outcome string, start time.Time) {
	metrics.RecordRouterRequest(mode.String(), method.String(), outcome, float64(time.Since(start).Microseconds())/1000)
}
