package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/giygas/adverse-events-api/openfda"
)

// Aggregation is the bucket size used to resample a time series.
type Aggregation string

const (
	Yearly    Aggregation = "yearly"
	Quarterly Aggregation = "quarterly"
)

// ParseAggregation accepts yearly/quarterly and the pandas-style Y/Q codes.
func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "yearly", "year", "y":
		return Yearly, nil
	case "quarterly", "quarter", "q":
		return Quarterly, nil
	}
	return "", fmt.Errorf("unknown aggregation %q", s)
}

// Label is the column heading for the aggregation.
func (a Aggregation) Label() string {
	if a == Quarterly {
		return "Quarter"
	}
	return "Year"
}

// Bucket is the report count of one period, e.g. "2021" or "2021-Q3".
type Bucket struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// Bucketize sums receipt-date counts (yyyymmdd) per year or quarter. Empty
// periods between the first and last observation are filled with zero so a
// chart shows gaps. Output is chronological.
func Bucketize(entries []openfda.Entry, agg Aggregation) ([]Bucket, error) {
	if agg != Yearly && agg != Quarterly {
		return nil, fmt.Errorf("unknown aggregation %q", agg)
	}
	if len(entries) == 0 {
		return []Bucket{}, nil
	}

	counts := make(map[int]int)
	first, last := 0, 0
	for i, e := range entries {
		d, err := time.Parse("20060102", e.Term)
		if err != nil {
			return nil, fmt.Errorf("invalid receipt date %q: %w", e.Term, err)
		}
		idx := periodIndex(d, agg)
		counts[idx] += e.Count
		if i == 0 || idx < first {
			first = idx
		}
		if i == 0 || idx > last {
			last = idx
		}
	}

	buckets := make([]Bucket, 0, last-first+1)
	for idx := first; idx <= last; idx++ {
		buckets = append(buckets, Bucket{Period: periodName(idx, agg), Count: counts[idx]})
	}
	return buckets, nil
}

// periodIndex maps a date to a sortable integer: the year, or year*4+quarter.
func periodIndex(d time.Time, agg Aggregation) int {
	if agg == Quarterly {
		return d.Year()*4 + (int(d.Month())-1)/3
	}
	return d.Year()
}

func periodName(idx int, agg Aggregation) string {
	if agg == Quarterly {
		return fmt.Sprintf("%d-Q%d", idx/4, idx%4+1)
	}
	return fmt.Sprintf("%d", idx)
}
