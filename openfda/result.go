package openfda

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Operation identifies a client operation in cache keys, metrics and logs.
type Operation string

const (
	OpTopEvents        Operation = "top_events"
	OpSeriousOutcomes  Operation = "serious_outcomes"
	OpPairFrequency    Operation = "pair_frequency"
	OpTimeSeries       Operation = "time_series"
	OpReportSources    Operation = "report_sources"
	OpReactionOutcomes Operation = "reaction_outcomes"
)

// Entry is one ranked row of a result.
type Entry struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Result is the normalized outcome of a successful operation.
type Result struct {
	Operation     Operation `json:"operation"`
	Drug          string    `json:"drug"`
	Event         string    `json:"event,omitempty"`
	Entries       []Entry   `json:"entries"`
	TotalForQuery int       `json:"total_for_query"`
	TotalForDrug  int       `json:"total_for_drug,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Percentage returns TotalForQuery as a share of TotalForDrug. ok is false
// when there is no denominator.
func (r Result) Percentage() (pct float64, ok bool) {
	if r.TotalForDrug <= 0 {
		return 0, false
	}
	return float64(r.TotalForQuery) * 100 / float64(r.TotalForDrug), true
}

// FormatPercentage renders the pair share with two decimals, e.g. "5.00%".
func (r Result) FormatPercentage() string {
	pct, ok := r.Percentage()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", pct)
}

func (r Result) clone() Result {
	r.Entries = slices.Clone(r.Entries)
	return r
}

// sortByCountDesc orders entries by count, keeping API order for ties.
func sortByCountDesc(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Count - a.Count
	})
}

func truncate(entries []Entry, limit int) []Entry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

func sumCounts(entries []Entry) int {
	total := 0
	for _, e := range entries {
		total += e.Count
	}
	return total
}

// cacheKey holds every parameter that changes an operation's result, in a
// fixed rendering order.
type cacheKey struct {
	op    Operation
	drug  string
	event string
	limit int
	sex   Sex
	age   AgeRange
}

func (k cacheKey) String() string {
	age := "-"
	if k.age.Active() {
		a := k.age.normalized()
		age = fmt.Sprintf("%d-%d", a.Min, a.Max)
	}
	return strings.Join([]string{
		string(k.op),
		k.drug,
		k.event,
		strconv.Itoa(k.limit),
		k.sex.Code(),
		age,
	}, "|")
}
