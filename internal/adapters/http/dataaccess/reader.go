package dataaccess

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/regmatrix/internal/domain/deploy"
	"github.com/okian/regmatrix/pkg/logger"
)

// UnauthorizedBehavior selects what a reader does with a 401 from the backend.
type UnauthorizedBehavior uint8

const (
	// Raise treats 401 like any other non-success status.
	Raise UnauthorizedBehavior = iota
	// ReturnNull resolves a 401 to a null result.
	ReturnNull
)

func (b UnauthorizedBehavior) String() string {
	switch b {
	case Raise:
		return "raise"
	case ReturnNull:
		return "returnNull"
	default:
		return "unknown"
	}
}

// ReaderOptions configures Reader.
type ReaderOptions struct {
	OnUnauthorized UnauthorizedBehavior
}

// ReadFunc reads the JSON body behind a logical path. A nil result with a nil
// error is the null result.
type ReadFunc func(ctx context.Context, path string) (json.RawMessage, error)

// Reader returns a ReadFunc bound to r. It is meant to back a query cache.
func (r *Router) Reader(opts ReaderOptions) ReadFunc {
	return func(ctx context.Context, path string) (json.RawMessage, error) {
		d := r.deployment.Deployment(ctx)
		if d.Mode() == deploy.ModeStatic {
			raw, err := r.readStatic(ctx, d, path)
			if err != nil {
				r.logger.Error(ctx, "failed to fetch static snapshot",
					logger.String("path", path),
					logger.String("target", ResolveStatic(d, path)),
					logger.Error(err),
				)
				return nil, err
			}
			return raw, nil
		}
		return r.readDynamic(ctx, path, opts)
	}
}

func (r *Router) readStatic(ctx context.Context, d deploy.Context, path string) (json.RawMessage, error) {
	env, err := r.static(ctx, d, path)
	if err != nil {
		return nil, err
	}
	return env.JSON()
}

func (r *Router) readDynamic(ctx context.Context, path string, opts ReaderOptions) (json.RawMessage, error) {
	start := time.Now()
	env, err := r.do(ctx, MethodGet, path, nil)
	if err != nil {
		r.observe(deploy.ModeDynamic, MethodGet, outcomeTransportError, start)
		return nil, err
	}

	if env.Status == http.StatusUnauthorized {
		switch opts.OnUnauthorized {
		case ReturnNull:
			r.observe(deploy.ModeDynamic, MethodGet, outcomeNull, start)
			return nil, nil
		case Raise:
		default:
			return nil, fmt.Errorf("unknown unauthorized behavior %d", opts.OnUnauthorized)
		}
	}

	if !env.OK() {
		r.observe(deploy.ModeDynamic, MethodGet, outcomeStatusError, start)
		return nil, newStatusError(env.Status, env.Body)
	}
	r.observe(deploy.ModeDynamic, MethodGet, outcomeOK, start)
	return env.JSON()
}
