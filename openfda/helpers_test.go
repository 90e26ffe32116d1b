package openfda

import (
	"context"
	"sync"
	"time"
)

// fakeFetcher answers queries from a table keyed by search and count
// expressions and records every call.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*Payload
	errs      map[string]error
	calls     []Query
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]*Payload),
		errs:      make(map[string]error),
	}
}

func fakeKey(search, count string) string {
	return search + "|" + count
}

func (f *fakeFetcher) on(search, count string, p *Payload) *fakeFetcher {
	f.responses[fakeKey(search, count)] = p
	return f
}

func (f *fakeFetcher) fail(search, count string, err error) *fakeFetcher {
	f.errs[fakeKey(search, count)] = err
	return f
}

// restore clears a configured failure and answers with p from now on.
func (f *fakeFetcher) restore(search, count string, p *Payload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, fakeKey(search, count))
	f.responses[fakeKey(search, count)] = p
}

// Fetch implements Fetcher. Unknown queries answer like a 404.
func (f *fakeFetcher) Fetch(_ context.Context, _ Operation, q Query) (*Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)

	key := fakeKey(q.SearchExpr(), q.CountExpr())
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if p, ok := f.responses[key]; ok {
		return p, nil
	}
	return nil, errNoMatches
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestClient(f Fetcher, clock *fakeClock) *Client {
	return NewClient(f, NewCache(DefaultCacheSize, DefaultCacheTTL, clock.Now), WithClock(clock.Now))
}
