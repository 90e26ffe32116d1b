package openfda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/giygas/adverse-events-api/logging"
	"github.com/giygas/adverse-events-api/metrics"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public drug adverse-event endpoint.
	DefaultBaseURL = "https://api.fda.gov/drug/event.json"

	// DefaultRequestDelay keeps a single IP under 240 requests per minute.
	DefaultRequestDelay = 250 * time.Millisecond

	// DefaultTimeout bounds one round trip.
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 64 * 1024
)

// Payload is the decoded body of a successful response.
type Payload struct {
	Entries []Entry
	Total   int
}

// Fetcher performs one round trip for a query. A 404 is reported as
// errNoMatches so the caller can decide whether it is fatal.
type Fetcher interface {
	Fetch(ctx context.Context, op Operation, q Query) (*Payload, error)
}

// Throttle spaces consecutive upstream calls: a call is released no sooner
// than the interval after the previous release, however long the throttle
// sat idle. One Throttle is shared by every caller of a fetcher.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows one request per interval. A non-positive interval
// disables throttling.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may be sent or ctx is done. A
// cancelled wait gives its slot back.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r := t.limiter.Reserve()
	d := r.Delay()
	if d <= 0 {
		return nil
	}
	metrics.UpstreamThrottleWait.Observe(d.Seconds())

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// HTTPFetcher talks to the real endpoint.
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
	throttle   *Throttle
	status     *UpstreamStatus
}

// NewHTTPFetcher creates a fetcher against baseURL.
func NewHTTPFetcher(baseURL string, timeout time.Duration, throttle *Throttle) *HTTPFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if throttle == nil {
		throttle = NewThrottle(DefaultRequestDelay)
	}
	return &HTTPFetcher{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		throttle:   throttle,
		status:     NewUpstreamStatus(),
	}
}

// Status exposes the fetcher's upstream bookkeeping.
func (f *HTTPFetcher) Status() *UpstreamStatus {
	return f.status
}

// apiResponse covers both grouped and ungrouped responses. Grouped terms can
// be strings or numbers; receipt-date groupings use "time" instead of "term".
type apiResponse struct {
	Meta struct {
		Results struct {
			Total int `json:"total"`
		} `json:"results"`
	} `json:"meta"`
	Results []struct {
		Term  any    `json:"term"`
		Time  string `json:"time"`
		Count int    `json:"count"`
	} `json:"results"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, op Operation, q Query) (*Payload, error) {
	if err := f.throttle.Wait(ctx); err != nil {
		f.record(op, "transport", 0, err)
		return nil, transportError(err)
	}

	reqURL := f.baseURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	logging.Debug("OpenFDA request", "operation", string(op), "url", reqURL)

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.record(op, "transport", time.Since(start), err)
		return nil, transportError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		// A 404 is an answer, not an outage.
		f.record(op, "not_found", time.Since(start), nil)
		return nil, errNoMatches
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg := readErrorMessage(resp)
		f.record(op, strconv.Itoa(resp.StatusCode), time.Since(start), errors.New(msg))
		return nil, remoteError(resp.StatusCode, msg)
	}

	var body apiResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		f.record(op, "decode", time.Since(start), err)
		return nil, &Error{
			Kind:       KindRemote,
			StatusCode: resp.StatusCode,
			Message:    "The adverse-event service returned an unreadable response.",
			Err:        err,
		}
	}
	f.record(op, "ok", time.Since(start), nil)

	payload := &Payload{Total: body.Meta.Results.Total}
	for _, r := range body.Results {
		term := r.Time
		if term == "" {
			term = termString(r.Term)
		}
		payload.Entries = append(payload.Entries, Entry{Term: term, Count: r.Count})
	}
	return payload, nil
}

func (f *HTTPFetcher) record(op Operation, outcome string, elapsed time.Duration, err error) {
	metrics.UpstreamRequests.WithLabelValues(string(op), outcome).Inc()
	if elapsed > 0 {
		metrics.UpstreamDuration.WithLabelValues(string(op)).Observe(elapsed.Seconds())
	}
	if err != nil {
		f.status.recordFailure(err)
		return
	}
	f.status.recordSuccess()
}

func readErrorMessage(resp *http.Response) string {
	status := fmt.Sprintf("HTTP error occurred: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return status
	}
	var body apiError
	if json.Unmarshal(raw, &body) == nil && body.Error.Message != "" {
		return status + ": " + body.Error.Message
	}
	return status
}

func termString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
