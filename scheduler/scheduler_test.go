package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/giygas/adverse-events-api/openfda"
)

// mockService counts warm-up queries per drug.
type mockService struct {
	mu      sync.Mutex
	top     map[string]int
	serious map[string]int
	failFor string
	block   chan struct{}
}

func newMockService() *mockService {
	return &mockService{top: map[string]int{}, serious: map[string]int{}}
}

func (m *mockService) TopAdverseEvents(_ context.Context, req openfda.TopEventsRequest) (*openfda.Result, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.top[req.Drug]++
	if req.Drug == m.failFor {
		return nil, errors.New("upstream down")
	}
	return &openfda.Result{Drug: req.Drug}, nil
}

func (m *mockService) SeriousOutcomes(_ context.Context, drug string, _ int) (*openfda.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.serious[drug]++
	if drug == m.failFor {
		return nil, errors.New("upstream down")
	}
	return &openfda.Result{Drug: drug}, nil
}

func (m *mockService) PairFrequency(context.Context, string, string) (*openfda.Result, error) {
	return nil, errors.New("not used")
}

func (m *mockService) TimeSeries(context.Context, string, string) (*openfda.Result, error) {
	return nil, errors.New("not used")
}

func (m *mockService) ReportSources(context.Context, string, int) (*openfda.Result, error) {
	return nil, errors.New("not used")
}

func (m *mockService) ReactionOutcomes(context.Context, string, int) (*openfda.Result, error) {
	return nil, errors.New("not used")
}

func (m *mockService) topCalls(drug string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.top[drug]
}

type mockCache struct {
	mu     sync.Mutex
	purged int
}

func (c *mockCache) Len() int           { return 3 }
func (c *mockCache) TTL() time.Duration { return 10 * time.Minute }
func (c *mockCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purged++
	return 1
}

func TestWarmupQueriesEveryDrug(t *testing.T) {
	svc := newMockService()
	s := NewScheduler(svc, &mockCache{}, []string{"lisinopril", "metformin"}, "06:00;18:00")

	ok, err := s.Warmup(context.Background())
	if err != nil {
		t.Fatalf("Warmup failed: %v", err)
	}
	if ok != 4 {
		t.Errorf("Expected 4 successful queries, got %d", ok)
	}
	for _, drug := range []string{"lisinopril", "metformin"} {
		if svc.top[drug] != 1 || svc.serious[drug] != 1 {
			t.Errorf("Expected one top events and one serious outcomes call for %s, got %d/%d",
				drug, svc.top[drug], svc.serious[drug])
		}
	}
}

func TestWarmupContinuesAfterFailure(t *testing.T) {
	svc := newMockService()
	svc.failFor = "ozempic"
	s := NewScheduler(svc, &mockCache{}, []string{"ozempic", "metformin"}, "06:00")

	ok, err := s.Warmup(context.Background())
	if err == nil {
		t.Fatal("Expected the first failure to be reported")
	}
	if ok != 2 {
		t.Errorf("Expected metformin queries to succeed, got %d successes", ok)
	}
	if svc.top["metformin"] != 1 {
		t.Error("Warm-up should continue after a failing drug")
	}
}

func TestWarmupStopsOnCancel(t *testing.T) {
	svc := newMockService()
	s := NewScheduler(svc, &mockCache{}, []string{"aspirin", "ibuprofen"}, "06:00")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := s.Warmup(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if ok != 0 || svc.topCalls("aspirin") != 0 {
		t.Error("No query should run after cancellation")
	}
}

func TestWarmupDoesNotOverlap(t *testing.T) {
	svc := newMockService()
	svc.block = make(chan struct{})
	s := NewScheduler(svc, &mockCache{}, []string{"aspirin"}, "06:00")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Warmup(context.Background())
	}()

	// Wait until the first run holds the flag.
	deadline := time.Now().Add(time.Second)
	for !s.warming.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	ok, err := s.Warmup(context.Background())
	if ok != 0 || err != nil {
		t.Errorf("Overlapping warm-up should be skipped, got ok=%d err=%v", ok, err)
	}

	close(svc.block)
	<-done
	if svc.topCalls("aspirin") != 1 {
		t.Errorf("Expected exactly one warm-up run, got %d", svc.topCalls("aspirin"))
	}
}

func TestStartSchedulesWarmup(t *testing.T) {
	svc := newMockService()
	s := NewScheduler(svc, &mockCache{}, []string{"aspirin"}, "06:00;18:00")

	if !s.NextWarmup().IsZero() {
		t.Error("NextWarmup should be zero before Start")
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	next := s.NextWarmup()
	if next.IsZero() {
		t.Fatal("Expected a next warm-up time after Start")
	}
	if next.Before(time.Now()) || next.After(time.Now().Add(13*time.Hour)) {
		t.Errorf("Next warm-up %v should be within the next 12 hours", next)
	}
	if h := next.Hour(); h != 6 && h != 18 {
		t.Errorf("Expected warm-up at 06:00 or 18:00, got %v", next)
	}

	// The initial warm-up runs in the background.
	deadline := time.Now().Add(time.Second)
	for svc.topCalls("aspirin") == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if svc.topCalls("aspirin") == 0 {
		t.Error("Expected an initial warm-up after Start")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(newMockService(), &mockCache{}, []string{"aspirin"}, "25:99")
	defer s.Stop()

	if err := s.Start(); err == nil {
		t.Error("Expected an error for an invalid schedule")
	}
}

func TestStartWithoutDrugs(t *testing.T) {
	s := NewScheduler(newMockService(), &mockCache{}, nil, "06:00")
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if !s.NextWarmup().IsZero() {
		t.Error("No warm-up should be scheduled without drugs")
	}
}

func TestPurge(t *testing.T) {
	cache := &mockCache{}
	s := NewScheduler(newMockService(), cache, nil, "06:00")
	s.purgeInt = 20 * time.Millisecond

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(70 * time.Millisecond)
	s.Stop()

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.purged == 0 {
		t.Error("Expected the purge job to run")
	}
}
