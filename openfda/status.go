package openfda

import (
	"sync/atomic"
	"time"
)

// UpstreamStatus tracks the last successful and failed upstream calls with
// atomics so health checks never block request handling.
type UpstreamStatus struct {
	lastSuccess atomic.Value // time.Time
	lastFailure atomic.Value // time.Time
	lastError   atomic.Value // string
	requests    atomic.Int64
	failures    atomic.Int64
}

// NewUpstreamStatus returns an empty status.
func NewUpstreamStatus() *UpstreamStatus {
	s := &UpstreamStatus{}
	s.lastSuccess.Store(time.Time{})
	s.lastFailure.Store(time.Time{})
	s.lastError.Store("")
	return s
}

func (s *UpstreamStatus) recordSuccess() {
	s.requests.Add(1)
	s.lastSuccess.Store(time.Now())
}

func (s *UpstreamStatus) recordFailure(err error) {
	s.requests.Add(1)
	s.failures.Add(1)
	s.lastFailure.Store(time.Now())
	s.lastError.Store(err.Error())
}

// LastSuccess returns the time of the last answered call (2xx or 404).
func (s *UpstreamStatus) LastSuccess() time.Time {
	if t, ok := s.lastSuccess.Load().(time.Time); ok {
		return t
	}
	return time.Time{}
}

// LastFailure returns the time of the last failed call.
func (s *UpstreamStatus) LastFailure() time.Time {
	if t, ok := s.lastFailure.Load().(time.Time); ok {
		return t
	}
	return time.Time{}
}

// LastError returns the message of the last failed call.
func (s *UpstreamStatus) LastError() string {
	if msg, ok := s.lastError.Load().(string); ok {
		return msg
	}
	return ""
}

// Requests returns the number of upstream calls made.
func (s *UpstreamStatus) Requests() int64 {
	return s.requests.Load()
}

// Failures returns the number of failed upstream calls.
func (s *UpstreamStatus) Failures() int64 {
	return s.failures.Load()
}
