// Package site serves the dashboard as a static file host would: the page
// shell plus the precomputed JSON snapshots, all read-only, under a base path.
package site

import (
	"context"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/okian/regmatrix/pkg/logger"
)

const (
	healthPath = "/healthz"
	indexPath  = "/"
)

// Register attaches the snapshot host routes to mux. basePath is either empty
// or starts with "/" and has no trailing "/".
func Register(ctx context.Context, mux *http.ServeMux, basePath string) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc(healthPath, MetricsMiddleware(NewHealthHandler(contentFS()).HandleHealth, healthPath))

	prefix := strings.TrimSuffix(basePath, "/")
	handler := NewRootHandler()
	mux.Handle(prefix+"/", http.StripPrefix(prefix, MetricsMiddleware(handler.HandleRoot, "site")))

	logger.Get().Info(ctx, "snapshot host routes registered",
		logger.String("base_path", prefix+"/"),
		logger.String("health", healthPath),
	)
}

// RootHandler serves embedded files with a single-page-app fallback.
type RootHandler struct {
	files http.Handler
	fsys  fs.FS
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	fsys := contentFS()
	return &RootHandler{
		files: http.FileServer(http.FS(fsys)),
		fsys:  fsys,
	}
}

// HandleRoot serves GET and HEAD only. Existing files are served as-is,
// extension-less routes get the page shell, and anything else is a 404.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	p := path.Clean("/" + r.URL.Path)
	if p == indexPath || h.isFile(p) {
		h.files.ServeHTTP(w, r)
		return
	}
	if path.Ext(p) != "" {
		http.NotFound(w, r)
		return
	}

	// Client-side route: hand back the shell and let the page router decide.
	r2 := r.Clone(r.Context())
	r2.URL.Path = indexPath
	r2.URL.RawPath = ""
	h.files.ServeHTTP(w, r2)
}

func (h *RootHandler) isFile(p string) bool {
	info, err := fs.Stat(h.fsys, strings.TrimPrefix(p, "/"))
	return err == nil && !info.IsDir()
}
