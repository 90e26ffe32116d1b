// Package health reports whether the service can still answer queries: how
// the OpenFDA endpoint has been responding, and what the result cache holds.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/adverse-events-api/interfaces"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"

	// Without a successful upstream call for this long while failures keep
	// coming in, only cached results can be served.
	upstreamOutage = time.Hour
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	upstream  interfaces.UpstreamMonitor
	cache     interfaces.CacheStats
	scheduler interfaces.Scheduler
	startedAt time.Time
	now       func() time.Time
}

// NewHealthChecker creates a health checker. scheduler may be nil when
// background jobs are disabled.
func NewHealthChecker(upstream interfaces.UpstreamMonitor, cache interfaces.CacheStats, scheduler interfaces.Scheduler) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		upstream:  upstream,
		cache:     cache,
		scheduler: scheduler,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// HealthCheck classifies the upstream state:
//   - no calls yet, or the last call succeeded: healthy
//   - the last call failed but one succeeded within the outage window: degraded
//   - otherwise: unhealthy (503)
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	now := h.now()
	lastSuccess := h.upstream.LastSuccess()
	lastFailure := h.upstream.LastFailure()

	switch {
	case h.upstream.Requests() == 0 || !lastFailure.After(lastSuccess):
		status, httpStatus = statusHealthy, http.StatusOK
	case !lastSuccess.IsZero() && now.Sub(lastSuccess) < upstreamOutage:
		status, httpStatus = statusDegraded, http.StatusOK
	default:
		status, httpStatus = statusUnhealthy, http.StatusServiceUnavailable
	}

	upstream := map[string]any{
		"requests":     h.upstream.Requests(),
		"failures":     h.upstream.Failures(),
		"last_success": formatTime(lastSuccess),
		"last_failure": formatTime(lastFailure),
	}
	if status != statusHealthy {
		upstream["last_error"] = h.upstream.LastError()
	}

	data = map[string]any{
		"uptime_seconds":    math.Round(now.Sub(h.startedAt).Seconds()),
		"cache_entries":     h.cache.Len(),
		"cache_ttl_seconds": int(h.cache.TTL().Seconds()),
		"upstream":          upstream,
	}
	if h.scheduler != nil {
		data["next_warmup"] = formatTime(h.scheduler.NextWarmup())
	}

	return status, data, httpStatus
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
