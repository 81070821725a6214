package site

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/okian/regmatrix/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SnapshotNames lists the data snapshots a healthy host must carry.
var SnapshotNames = []string{"regulations", "governance", "resources"} //nolint:gochecknoglobals // fixed bundle manifest

// HealthHandler reports 503 while any bundled snapshot is missing or not a
// JSON array, and otherwise exposes the metrics registry.
type HealthHandler struct {
	fsys    fs.FS
	metrics http.Handler
}

// NewHealthHandler checks the snapshots in fsys on every request.
func NewHealthHandler(fsys fs.FS) *HealthHandler {
	return &HealthHandler{
		fsys:    fsys,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := checkSnapshots(h.fsys); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	h.metrics.ServeHTTP(w, r)
}

func checkSnapshots(fsys fs.FS) error {
	for _, name := range SnapshotNames {
		raw, err := fs.ReadFile(fsys, "data/"+name+".json")
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", name, err)
		}
		var rows []json.RawMessage
		if err := json.Unmarshal(raw, &rows); err != nil {
			return fmt.Errorf("snapshot %s: %w", name, err)
		}
	}
	return nil
}
