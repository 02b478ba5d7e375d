// Package health provides health checking functionality for the interactions API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/interactions-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	catalog   interfaces.CatalogStore
	sessions  interfaces.SessionStore
	reloads   interfaces.ReloadReporter
	startedAt time.Time
}

// Compile-time check to ensure HealthCheckerImpl implements HealthChecker
var _ interfaces.HealthChecker = (*HealthCheckerImpl)(nil)

// NewHealthChecker creates a new health checker with injected dependencies.
// sessions and reloads may be nil.
func NewHealthChecker(catalog interfaces.CatalogStore, sessions interfaces.SessionStore, reloads interfaces.ReloadReporter) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		catalog:   catalog,
		sessions:  sessions,
		reloads:   reloads,
		startedAt: time.Now(),
	}
}

// HealthCheck returns HTTP-specific health data.
// An empty catalog cannot answer any check, so it is unhealthy; a failed reload
// leaves the previous catalog in service and is reported as degraded.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	drugs := len(h.catalog.Drugs())
	rules := len(h.catalog.Rules())
	lastLoaded := h.catalog.LastLoaded()
	catalogAge := time.Since(lastLoaded)

	var reloadErr error
	isReloading := false
	if h.reloads != nil {
		reloadErr = h.reloads.LastReloadError()
		isReloading = h.reloads.IsReloading()
	}

	switch {
	case drugs == 0 || rules == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case reloadErr != nil:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_loaded":       lastLoaded.Format(time.RFC3339),
		"catalog_age_hours": math.Round(catalogAge.Hours()*10) / 10,
		"drugs":             drugs,
		"rules":             rules,
		"is_reloading":      isReloading,
		"uptime_seconds":    int64(time.Since(h.startedAt).Seconds()),
	}

	if h.sessions != nil {
		data["sessions"] = h.sessions.Len()
	}
	if reloadErr != nil {
		data["last_reload_error"] = reloadErr.Error()
	}

	return status, data, httpStatus
}
