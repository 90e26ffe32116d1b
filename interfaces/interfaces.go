// Package interfaces defines the contracts between the HTTP layer, the MCP
// tools, the scheduler and the OpenFDA query client.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/adverse-events-api/openfda"
)

// QueryService runs the adverse-event operations. *openfda.Client is the
// production implementation.
type QueryService interface {
	TopAdverseEvents(ctx context.Context, req openfda.TopEventsRequest) (*openfda.Result, error)
	SeriousOutcomes(ctx context.Context, drug string, limit int) (*openfda.Result, error)
	PairFrequency(ctx context.Context, drug, event string) (*openfda.Result, error)
	TimeSeries(ctx context.Context, drug, event string) (*openfda.Result, error)
	ReportSources(ctx context.Context, drug string, limit int) (*openfda.Result, error)
	ReactionOutcomes(ctx context.Context, drug string, limit int) (*openfda.Result, error)
}

// CacheStats exposes the result cache to health reporting and maintenance jobs.
type CacheStats interface {
	Len() int
	TTL() time.Duration
	PurgeExpired() int
}

// UpstreamMonitor reports how the OpenFDA endpoint has been answering.
type UpstreamMonitor interface {
	LastSuccess() time.Time
	LastFailure() time.Time
	LastError() string
	Requests() int64
	Failures() int64
}

// Scheduler manages the background warm-up and cache maintenance jobs.
type Scheduler interface {
	Start() error
	Stop()
	// NextWarmup returns the next scheduled warm-up, or the zero time when
	// the scheduler is not running.
	NextWarmup() time.Time
}

// HTTPHandler serves the versioned REST endpoints.
type HTTPHandler interface {
	ServeTopEvents(w http.ResponseWriter, r *http.Request)
	ServeSeriousOutcomes(w http.ResponseWriter, r *http.Request)
	ServeReactionOutcomes(w http.ResponseWriter, r *http.Request)
	ServePairFrequency(w http.ResponseWriter, r *http.Request)
	ServeTimeSeries(w http.ResponseWriter, r *http.Request)
	ServeReportSources(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health.
type HealthChecker interface {
	// HealthCheck returns "healthy", "degraded" or "unhealthy", the details
	// to publish and the HTTP status to answer with.
	HealthCheck() (status string, data map[string]any, httpStatus int)
}

// InputValidator checks raw user input before it reaches the query client.
type InputValidator interface {
	// ValidateTerm checks a drug or reaction name.
	ValidateTerm(input string) error

	// ValidateLimit parses a result limit; an empty string means default (0).
	ValidateLimit(input string) (int, error)

	// ValidateAgeRange parses optional onset-age bounds.
	ValidateAgeRange(minAge, maxAge string) (openfda.AgeRange, error)
}
