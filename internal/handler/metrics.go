package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/hpnchanel/usersvc/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "usersvc_users_created_total %d\n", snap.UsersCreated)
	writeMetric(w, "usersvc_users_updated_total %d\n", snap.UsersUpdated)
	writeMetric(w, "usersvc_users_deleted_total %d\n", snap.UsersDeleted)
	writeMetric(w, "usersvc_rate_limited_total %d\n", snap.RateLimited)
	writeMetric(w, "usersvc_events_published_total{result=\"success\"} %d\n", snap.EventsPublished)
	writeMetric(w, "usersvc_events_published_total{result=\"dropped\"} %d\n", snap.EventsDropped)

	codes := make([]string, 0, len(snap.ErrorResponses))
	for code := range snap.ErrorResponses {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		writeMetric(w, "usersvc_error_responses_total{code=%q} %d\n", code, snap.ErrorResponses[code])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
