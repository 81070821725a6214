// Package deploy classifies the runtime as a live-backend deployment or a
// static read-only one.
//
// The same build is shipped to a server-backed host and to a static file host,
// so the classification is derived from context on every call instead of
// being baked in at build time.
package deploy

import (
	"context"
	"net"
	"strings"
)

// Defaults for the project-pages style static host.
const (
	DefaultStaticHostSuffix = "github.io"
	DefaultBasePath         = "/ai-regulations-matrix"
)

// BuildMode is stamped at link time:
//
//	go build -ldflags "-X github.com/okian/regmatrix/internal/domain/deploy.BuildMode=production"
var BuildMode = "development"

// IsProductionBuild reports whether the binary was linked as a production build.
func IsProductionBuild() bool {
	return strings.EqualFold(strings.TrimSpace(BuildMode), "production")
}

// Mode is the deployment classification.
type Mode int

const (
	// ModeDynamic means a live backend answers API paths directly.
	ModeDynamic Mode = iota
	// ModeStatic means only static files can be served; writes cannot persist.
	ModeStatic
)

func (m Mode) String() string {
	switch m {
	case ModeDynamic:
		return "dynamic"
	case ModeStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Context holds the facts the classification is derived from.
type Context struct {
	// Production is the build mode flag.
	Production bool
	// Hostname is the host the dashboard is served from. A port is tolerated.
	Hostname string
	// StaticHostSuffix is the domain suffix of the static host, e.g. "github.io".
	StaticHostSuffix string
	// BasePath is the sub-path the static host serves the site under.
	BasePath string
}

// IsStatic reports whether both the production flag is set and the host
// belongs to the static hosting domain.
func (c Context) IsStatic() bool {
	return c.Production && hostMatches(c.Hostname, c.suffix())
}

// Mode returns the classification as a Mode.
func (c Context) Mode() Mode {
	if c.IsStatic() {
		return ModeStatic
	}
	return ModeDynamic
}

// ResolvedBasePath is BasePath in static mode and empty otherwise.
func (c Context) ResolvedBasePath() string {
	if !c.IsStatic() {
		return ""
	}
	return strings.TrimSuffix(c.BasePath, "/")
}

func (c Context) suffix() string {
	if c.StaticHostSuffix == "" {
		return DefaultStaticHostSuffix
	}
	return c.StaticHostSuffix
}

// hostMatches reports whether host equals suffix or is a subdomain of it.
func hostMatches(host, suffix string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	suffix = strings.ToLower(strings.Trim(strings.TrimSpace(suffix), "."))
	if host == "" || suffix == "" {
		return false
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}

// Provider yields the current deployment context. Implementations are asked
// again on every call and must be safe for concurrent use.
type Provider interface {
	Deployment(ctx context.Context) Context
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) Context

// Deployment calls f.
func (f ProviderFunc) Deployment(ctx context.Context) Context { return f(ctx) }

// Fixed returns a Provider that always reports c.
func Fixed(c Context) Provider {
	return ProviderFunc(func(context.Context) Context { return c })
}
