// Package scheduler runs the background jobs of the adverse-events API: a
// twice-daily cache warm-up for frequently requested drugs and a periodic
// purge of expired cache entries.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/adverse-events-api/interfaces"
	"github.com/giygas/adverse-events-api/logging"
	"github.com/giygas/adverse-events-api/openfda"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// DefaultPurgeInterval is how often expired cache entries are dropped.
const DefaultPurgeInterval = 5 * time.Minute

// Scheduler warms the result cache and keeps it tidy.
type Scheduler struct {
	service  interfaces.QueryService
	cache    interfaces.CacheStats
	drugs    []string
	at       string
	purgeInt time.Duration

	scheduler *gocron.Scheduler
	warmupJob *gocron.Job

	ctx     context.Context
	cancel  context.CancelFunc
	warming atomic.Bool
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler that warms drugs at the given gocron
// At() times, e.g. "06:00;18:00".
func NewScheduler(service interfaces.QueryService, cache interfaces.CacheStats, drugs []string, at string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		service:   service,
		cache:     cache,
		drugs:     drugs,
		at:        at,
		purgeInt:  DefaultPurgeInterval,
		scheduler: gocron.NewScheduler(time.Local),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the jobs and runs a first warm-up in the background.
func (s *Scheduler) Start() error {
	if len(s.drugs) > 0 {
		job, err := s.scheduler.Every(1).Days().At(s.at).Do(s.runWarmup)
		if err != nil {
			logging.Error("Failed to schedule cache warm-up", "schedule", s.at, "error", err)
			return fmt.Errorf("failed to schedule warm-up: %w", err)
		}
		s.warmupJob = job
	}

	if _, err := s.scheduler.Every(s.purgeInt).WaitForSchedule().Do(s.purge); err != nil {
		logging.Error("Failed to schedule cache purge", "error", err)
		return fmt.Errorf("failed to schedule cache purge: %w", err)
	}

	s.scheduler.StartAsync()

	if len(s.drugs) > 0 {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runWarmup()
		}()
	}

	logging.Info("Scheduler started", "warmup_drugs", len(s.drugs), "warmup_schedule", s.at, "purge_interval", s.purgeInt.String())
	return nil
}

// Stop stops the scheduler and cancels any warm-up in progress.
func (s *Scheduler) Stop() {
	s.cancel()
	s.scheduler.Stop()
	s.wg.Wait()
}

// NextWarmup returns the next scheduled warm-up, or the zero time.
func (s *Scheduler) NextWarmup() time.Time {
	if s.warmupJob == nil || !s.scheduler.IsRunning() {
		return time.Time{}
	}
	return s.warmupJob.NextRun()
}

func (s *Scheduler) runWarmup() {
	if _, err := s.Warmup(s.ctx); err != nil {
		logging.Warn("Cache warm-up incomplete", "error", err)
	}
}

// Warmup runs the top events and serious outcomes queries for every
// configured drug. Runs never overlap: a call made while another is in
// progress returns immediately. The returned count is the number of
// successful queries.
func (s *Scheduler) Warmup(ctx context.Context) (int, error) {
	if !s.warming.CompareAndSwap(false, true) {
		logging.Info("Warm-up already in progress, skipping...")
		return 0, nil
	}
	defer s.warming.Store(false)

	start := time.Now()
	ok, failed := 0, 0
	var firstErr error

	for _, drug := range s.drugs {
		if err := ctx.Err(); err != nil {
			return ok, err
		}

		queries := []func() error{
			func() error {
				_, err := s.service.TopAdverseEvents(ctx, openfda.TopEventsRequest{Drug: drug})
				return err
			},
			func() error {
				_, err := s.service.SeriousOutcomes(ctx, drug, 0)
				return err
			},
		}
		for _, query := range queries {
			if err := query(); err != nil {
				failed++
				if firstErr == nil {
					firstErr = fmt.Errorf("warm-up of %q failed: %w", drug, err)
				}
				logging.Debug("Warm-up query failed", "drug", drug, "error", err)
				continue
			}
			ok++
		}
	}

	logging.Info("Cache warm-up completed",
		"duration", time.Since(start).String(),
		"succeeded", ok,
		"failed", failed,
		"cache_entries", s.cache.Len())
	return ok, firstErr
}

func (s *Scheduler) purge() {
	if n := s.cache.PurgeExpired(); n > 0 {
		logging.Debug("Expired cache entries purged", "count", n, "remaining", s.cache.Len())
	}
}
