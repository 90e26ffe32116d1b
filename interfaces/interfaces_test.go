package interfaces_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/giygas/adverse-events-api/interfaces"
	"github.com/giygas/adverse-events-api/openfda"
)

var (
	_ interfaces.QueryService    = (*openfda.Client)(nil)
	_ interfaces.CacheStats      = (*openfda.Cache)(nil)
	_ interfaces.UpstreamMonitor = (*openfda.UpstreamStatus)(nil)
)

// stubQueryService returns canned results.
type stubQueryService struct {
	calls int
}

func (s *stubQueryService) result(op openfda.Operation, drug string) *openfda.Result {
	s.calls++
	return &openfda.Result{Operation: op, Drug: drug, Entries: []openfda.Entry{{Term: "NAUSEA", Count: 3}}}
}

func (s *stubQueryService) TopAdverseEvents(_ context.Context, req openfda.TopEventsRequest) (*openfda.Result, error) {
	return s.result(openfda.OpTopEvents, req.Drug), nil
}

func (s *stubQueryService) SeriousOutcomes(_ context.Context, drug string, _ int) (*openfda.Result, error) {
	return s.result(openfda.OpSeriousOutcomes, drug), nil
}

func (s *stubQueryService) PairFrequency(_ context.Context, drug, _ string) (*openfda.Result, error) {
	return s.result(openfda.OpPairFrequency, drug), nil
}

func (s *stubQueryService) TimeSeries(_ context.Context, drug, _ string) (*openfda.Result, error) {
	return s.result(openfda.OpTimeSeries, drug), nil
}

func (s *stubQueryService) ReportSources(_ context.Context, drug string, _ int) (*openfda.Result, error) {
	return s.result(openfda.OpReportSources, drug), nil
}

func (s *stubQueryService) ReactionOutcomes(_ context.Context, drug string, _ int) (*openfda.Result, error) {
	return s.result(openfda.OpReactionOutcomes, drug), nil
}

type stubScheduler struct{ running bool }

func (s *stubScheduler) Start() error { s.running = true; return nil }
func (s *stubScheduler) Stop()        { s.running = false }
func (s *stubScheduler) NextWarmup() time.Time {
	if !s.running {
		return time.Time{}
	}
	return time.Now().Add(time.Hour)
}

type stubHealthChecker struct{}

func (stubHealthChecker) HealthCheck() (string, map[string]any, int) {
	return "healthy", map[string]any{"cache_entries": 0}, http.StatusOK
}

type stubHandler struct{}

func (stubHandler) ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func (h stubHandler) ServeTopEvents(w http.ResponseWriter, r *http.Request)        { h.ok(w, r) }
func (h stubHandler) ServeSeriousOutcomes(w http.ResponseWriter, r *http.Request)  { h.ok(w, r) }
func (h stubHandler) ServeReactionOutcomes(w http.ResponseWriter, r *http.Request) { h.ok(w, r) }
func (h stubHandler) ServePairFrequency(w http.ResponseWriter, r *http.Request)    { h.ok(w, r) }
func (h stubHandler) ServeTimeSeries(w http.ResponseWriter, r *http.Request)       { h.ok(w, r) }
func (h stubHandler) ServeReportSources(w http.ResponseWriter, r *http.Request)    { h.ok(w, r) }
func (h stubHandler) HealthCheck(w http.ResponseWriter, r *http.Request)           { h.ok(w, r) }

func TestQueryServiceInterface(t *testing.T) {
	stub := &stubQueryService{}
	var svc interfaces.QueryService = stub
	ctx := context.Background()

	if _, err := svc.TopAdverseEvents(ctx, openfda.TopEventsRequest{Drug: "aspirin"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SeriousOutcomes(ctx, "aspirin", 0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.PairFrequency(ctx, "aspirin", "nausea"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TimeSeries(ctx, "aspirin", "nausea"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ReportSources(ctx, "aspirin", 0); err != nil {
		t.Fatal(err)
	}
	r, err := svc.ReactionOutcomes(ctx, "aspirin", 0)
	if err != nil {
		t.Fatal(err)
	}
	if r.Operation != openfda.OpReactionOutcomes || r.Drug != "aspirin" {
		t.Errorf("unexpected result %+v", r)
	}
	if stub.calls != 6 {
		t.Errorf("expected 6 calls, got %d", stub.calls)
	}
}

func TestSchedulerInterface(t *testing.T) {
	var s interfaces.Scheduler = &stubScheduler{}
	if !s.NextWarmup().IsZero() {
		t.Error("stopped scheduler should report no next warm-up")
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if s.NextWarmup().IsZero() {
		t.Error("running scheduler should report a next warm-up")
	}
	s.Stop()
}

func TestHTTPHandlerInterface(t *testing.T) {
	var h interfaces.HTTPHandler = stubHandler{}
	handlers := []http.HandlerFunc{
		h.ServeTopEvents, h.ServeSeriousOutcomes, h.ServeReactionOutcomes,
		h.ServePairFrequency, h.ServeTimeSeries, h.ServeReportSources, h.HealthCheck,
	}
	for i, fn := range handlers {
		rr := httptest.NewRecorder()
		fn(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusOK {
			t.Errorf("handler %d returned %d", i, rr.Code)
		}
	}
}

func TestHealthCheckerInterface(t *testing.T) {
	var hc interfaces.HealthChecker = stubHealthChecker{}
	status, details, code := hc.HealthCheck()
	if status != "healthy" || code != http.StatusOK {
		t.Errorf("HealthCheck() = %q, %d", status, code)
	}
	if _, ok := details["cache_entries"]; !ok {
		t.Error("details should carry cache_entries")
	}
}
