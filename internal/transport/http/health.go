package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"fipulse/internal/dataset"
)

// HealthHandler reports service liveness and dataset status.
type HealthHandler struct {
	store   *dataset.Store
	started time.Time
	version string
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(store *dataset.Store, version string) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now(), version: version}
}

type healthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	UptimeSec    int64  `json:"uptime_seconds"`
	Observations int    `json:"observations"`
	Events       int    `json:"events"`
	ImpactLinks  int    `json:"impact_links"`
}

// ServeHTTP handles GET /healthz. The service is degraded when the dataset
// failed to load.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Version:   h.version,
		UptimeSec: int64(time.Since(h.started).Seconds()),
	}
	if h.store == nil {
		resp.Status = "degraded"
		render.Status(r, http.StatusServiceUnavailable)
	} else {
		resp.Observations = len(h.store.Observations())
		resp.Events = len(h.store.Events())
		resp.ImpactLinks = len(h.store.ImpactLinks())
	}
	render.JSON(w, r, resp)
}
