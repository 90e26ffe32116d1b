package openfda

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/giygas/adverse-events-api/logging"
)

// TopEventsRequest carries the filters of the top adverse events operation.
type TopEventsRequest struct {
	Drug  string
	Limit int
	Sex   Sex
	Age   AgeRange
}

// Client runs the adverse-event operations. Each operation checks the cache
// first, issues its sub-queries one after another, and caches only complete
// results. A Client is safe for concurrent use.
type Client struct {
	fetcher Fetcher
	cache   *Cache
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the clock used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient creates a client over fetcher. A nil cache gets the reference
// size and TTL.
func NewClient(fetcher Fetcher, cache *Cache, opts ...Option) *Client {
	if cache == nil {
		cache = NewCache(DefaultCacheSize, DefaultCacheTTL, nil)
	}
	c := &Client{
		fetcher: fetcher,
		cache:   cache,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns the client's result cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// subQuery is one fetch of a multi-call operation and what to do when it fails.
type subQuery struct {
	query Query
	// tolerateMissing turns a 404 into an empty payload.
	tolerateMissing bool
}

func (c *Client) run(ctx context.Context, op Operation, sq subQuery) (*Payload, error) {
	p, err := c.fetcher.Fetch(ctx, op, sq.query)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, errNoMatches) && sq.tolerateMissing {
		return &Payload{}, nil
	}
	return nil, err
}

// bestEffort runs a sub-query whose failure must not fail the operation. A
// 404 counts as an empty payload; any other failure yields an empty payload
// with complete set to false, and the result built from it is not cached.
func (c *Client) bestEffort(ctx context.Context, op Operation, q Query) (p *Payload, complete bool) {
	p, err := c.run(ctx, op, subQuery{query: q, tolerateMissing: true})
	if err != nil {
		logging.Warn("Ignoring failed sub-query", "operation", string(op), "search", q.SearchExpr(), "error", err)
		return &Payload{}, false
	}
	return p, true
}

func (c *Client) cached(key string) (*Result, bool) {
	if r, ok := c.cache.Get(key); ok {
		logging.Debug("Cache hit", "key", key)
		return &r, true
	}
	return nil, false
}

// finish stamps r and caches it when every sub-query succeeded.
func (c *Client) finish(key string, r Result, complete bool) *Result {
	if r.Entries == nil {
		r.Entries = []Entry{}
	}
	r.FetchedAt = c.now()
	if complete {
		c.cache.Put(key, r)
	} else {
		logging.Debug("Not caching degraded result", "key", key)
	}
	return &r
}

func (c *Client) store(key string, r Result) *Result {
	return c.finish(key, r, true)
}

// TopAdverseEvents ranks the reactions reported for a drug, optionally
// filtered by sex and onset age, and attaches the number of reports matching
// the same filters.
func (c *Client) TopAdverseEvents(ctx context.Context, req TopEventsRequest) (*Result, error) {
	drug, err := NormalizeDrug(req.Drug)
	if err != nil {
		return nil, err
	}
	limit, err := normalizeLimit(req.Limit, DefaultTopEventsLimit)
	if err != nil {
		return nil, err
	}
	if err := req.Age.Validate(); err != nil {
		return nil, err
	}

	key := cacheKey{op: OpTopEvents, drug: drug, limit: limit, sex: req.Sex, age: req.Age}.String()
	if r, ok := c.cached(key); ok {
		return r, nil
	}

	q := BuildTopEventsQuery(drug, limit, req.Sex, req.Age)
	grouped, err := c.run(ctx, OpTopEvents, subQuery{query: q})
	if err != nil {
		if errors.Is(err, errNoMatches) {
			return nil, notFound(fmt.Sprintf("No data found for '%s' with the specified filters. The drug may not be in the database, or there may be no reports matching the filter criteria.", req.Drug))
		}
		return nil, err
	}

	totals, complete := c.bestEffort(ctx, OpTopEvents, q.Totals())

	entries := slices.Clone(grouped.Entries)
	sortByCountDesc(entries)

	return c.finish(key, Result{
		Operation:     OpTopEvents,
		Drug:          drug,
		Entries:       truncate(entries, limit),
		TotalForQuery: totals.Total,
	}, complete), nil
}

// SeriousOutcomes counts serious reports per seriousness criterion. The
// serious-report total is best effort, and a result whose total failed is not
// cached. A criterion with no matches is omitted; any other failure of a
// criterion query fails the whole operation.
func (c *Client) SeriousOutcomes(ctx context.Context, drugName string, limit int) (*Result, error) {
	drug, err := NormalizeDrug(drugName)
	if err != nil {
		return nil, err
	}
	if limit, err = normalizeLimit(limit, DefaultSeriousOutcomesLimit); err != nil {
		return nil, err
	}

	key := cacheKey{op: OpSeriousOutcomes, drug: drug, limit: limit}.String()
	if r, ok := c.cached(key); ok {
		return r, nil
	}

	base := BuildSeriousBaseQuery(drug)
	totals, complete := c.bestEffort(ctx, OpSeriousOutcomes, base)

	var entries []Entry
	for _, field := range SeriousOutcomeFields {
		p, err := c.run(ctx, OpSeriousOutcomes, subQuery{query: base.And(Exists{Field: field}), tolerateMissing: true})
		if err != nil {
			return nil, partialFailure(field, err)
		}
		if p.Total > 0 {
			entries = append(entries, Entry{Term: SeriousOutcomeLabels.Label(field), Count: p.Total})
		}
	}
	if len(entries) == 0 {
		return nil, notFound(fmt.Sprintf("No serious outcome data found for drug: '%s'.", drugName))
	}

	sortByCountDesc(entries)
	return c.finish(key, Result{
		Operation:     OpSeriousOutcomes,
		Drug:          drug,
		Entries:       truncate(entries, limit),
		TotalForQuery: totals.Total,
	}, complete), nil
}

// PairFrequency counts reports mentioning both drug and event, along with
// the drug's overall report count as the denominator.
func (c *Client) PairFrequency(ctx context.Context, drugName, eventName string) (*Result, error) {
	drug, event, err := NormalizePair(drugName, eventName)
	if err != nil {
		return nil, err
	}

	key := cacheKey{op: OpPairFrequency, drug: drug, event: event}.String()
	if r, ok := c.cached(key); ok {
		return r, nil
	}

	drugTotals, err := c.run(ctx, OpPairFrequency, subQuery{query: drugQuery(drug)})
	if err != nil {
		if errors.Is(err, errNoMatches) {
			return nil, notFound(fmt.Sprintf("No data found for drug '%s'. It may be misspelled or not in the database.", drugName))
		}
		return nil, err
	}

	pairTotals, err := c.run(ctx, OpPairFrequency, subQuery{query: pairQuery(drug, event), tolerateMissing: true})
	if err != nil {
		return nil, err
	}

	return c.store(key, Result{
		Operation:     OpPairFrequency,
		Drug:          drug,
		Event:         event,
		TotalForQuery: pairTotals.Total,
		TotalForDrug:  drugTotals.Total,
	}), nil
}

// TimeSeries returns report counts per receipt date (yyyymmdd) for a
// drug/event pair in chronological order.
func (c *Client) TimeSeries(ctx context.Context, drugName, eventName string) (*Result, error) {
	drug, event, err := NormalizePair(drugName, eventName)
	if err != nil {
		return nil, err
	}

	key := cacheKey{op: OpTimeSeries, drug: drug, event: event}.String()
	if r, ok := c.cached(key); ok {
		return r, nil
	}

	p, err := c.run(ctx, OpTimeSeries, subQuery{query: BuildTimeSeriesQuery(drug, event)})
	if err != nil {
		if errors.Is(err, errNoMatches) {
			return nil, notFound(fmt.Sprintf("No data found for drug '%s' and event '%s'. They may be misspelled or not in the database.", drugName, eventName))
		}
		return nil, err
	}

	entries := slices.Clone(p.Entries)
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Term, b.Term)
	})

	return c.store(key, Result{
		Operation:     OpTimeSeries,
		Drug:          drug,
		Event:         event,
		Entries:       entries,
		TotalForQuery: sumCounts(entries),
	}), nil
}

// ReportSources breaks a drug's reports down by the qualification of the
// primary reporter.
func (c *Client) ReportSources(ctx context.Context, drugName string, limit int) (*Result, error) {
	return c.rankCodes(ctx, OpReportSources, drugName, limit, DefaultReportSourcesLimit, FieldQualification, QualificationCodes)
}

// ReactionOutcomes breaks a drug's reactions down by reported outcome.
func (c *Client) ReactionOutcomes(ctx context.Context, drugName string, limit int) (*Result, error) {
	return c.rankCodes(ctx, OpReactionOutcomes, drugName, limit, DefaultReactionOutcomesLimit, FieldReactionOut, OutcomeCodes)
}

// rankCodes groups a drug's reports by a coded field, totals every group
// before truncation, and translates the codes.
func (c *Client) rankCodes(ctx context.Context, op Operation, drugName string, limit, def int, field string, table CodeTable) (*Result, error) {
	drug, err := NormalizeDrug(drugName)
	if err != nil {
		return nil, err
	}
	if limit, err = normalizeLimit(limit, def); err != nil {
		return nil, err
	}

	key := cacheKey{op: op, drug: drug, limit: limit}.String()
	if r, ok := c.cached(key); ok {
		return r, nil
	}

	p, err := c.run(ctx, op, subQuery{query: BuildCountQuery(drug, field)})
	if err != nil {
		if errors.Is(err, errNoMatches) {
			return nil, notFound(fmt.Sprintf("No data found for drug: '%s'.", drugName))
		}
		return nil, err
	}

	entries := slices.Clone(p.Entries)
	sortByCountDesc(entries)
	total := sumCounts(entries)
	for i := range entries {
		entries[i].Term = table.Label(entries[i].Term)
	}

	return c.store(key, Result{
		Operation:     op,
		Drug:          drug,
		Entries:       truncate(entries, limit),
		TotalForQuery: total,
	}), nil
}
