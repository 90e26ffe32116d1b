// Package report renders query results as the plain-text summaries shown in
// the panel and returned by the MCP tools.
package report

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/giygas/adverse-events-api/openfda"
)

const (
	Source     = "Source: FDA FAERS via OpenFDA"
	Disclaimer = "Disclaimer: Spontaneous reports do not prove causation. Consult a healthcare professional."
	rule       = "---------------------------------------------------"
)

// Title capitalizes each word of a drug or event name. A cases.Caser keeps
// state between calls, so each call gets its own.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// tableLayout names the heading and columns used for a ranked result.
type tableLayout struct {
	heading string
	column  string
}

var tables = map[openfda.Operation]tableLayout{
	openfda.OpTopEvents:        {"Top Adverse Events", "Adverse Event"},
	openfda.OpSeriousOutcomes:  {"Top Serious Outcomes", "Serious Outcome"},
	openfda.OpReactionOutcomes: {"Reaction Outcomes", "Outcome"},
	openfda.OpReportSources:    {"Report Sources", "Reporter"},
}

// Summary renders any result. Time series are summarized by year.
func Summary(r *openfda.Result) string {
	switch r.Operation {
	case openfda.OpPairFrequency:
		return PairSummary(r)
	case openfda.OpTimeSeries:
		s, _ := TrendSummary(r, Yearly)
		return s
	default:
		return RankedSummary(r)
	}
}

func header(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(Source)
	b.WriteByte('\n')
	b.WriteString(Disclaimer)
	b.WriteByte('\n')
	b.WriteString(rule)
	b.WriteByte('\n')
}

// writeTable lays entries out in two aligned columns.
func writeTable(b *strings.Builder, column string, entries []openfda.Entry) {
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\tReport Count\t\n", column)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t\n", e.Term, FormatCount(e.Count))
	}
	_ = tw.Flush()
}

// RankedSummary renders top events, serious outcomes, reaction outcomes and
// report sources as a table under the standard header.
func RankedSummary(r *openfda.Result) string {
	layout, ok := tables[r.Operation]
	if !ok {
		layout = tableLayout{"Results", "Term"}
	}
	if len(r.Entries) == 0 {
		return fmt.Sprintf("No data found for '%s'. The drug may not be in the database or it might be misspelled.", r.Drug)
	}

	var b strings.Builder
	header(&b, fmt.Sprintf("%s for '%s'", layout.heading, Title(r.Drug)))
	writeTable(&b, layout.column, r.Entries)
	if r.TotalForQuery > 0 {
		fmt.Fprintf(&b, "\nTotal matching reports: %s\n", FormatCount(r.TotalForQuery))
	}
	return b.String()
}

// PairSummary renders the drug/event co-occurrence count and its share of
// all reports for the drug.
func PairSummary(r *openfda.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %s reports for the combination of '%s' and '%s'.\n",
		FormatCount(r.TotalForQuery), Title(r.Drug), Title(r.Event))
	if _, ok := r.Percentage(); ok {
		fmt.Fprintf(&b, "This is %s of the %s reports for '%s'.\n",
			r.FormatPercentage(), FormatCount(r.TotalForDrug), Title(r.Drug))
	}
	b.WriteByte('\n')
	b.WriteString(Source)
	b.WriteByte('\n')
	b.WriteString(Disclaimer)
	return b.String()
}

// TrendSummary renders a time series resampled to agg.
func TrendSummary(r *openfda.Result, agg Aggregation) (string, error) {
	buckets, err := Bucketize(r.Entries, agg)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	header(&b, fmt.Sprintf("Report Trend for '%s' and '%s' (by %s)", Title(r.Drug), Title(r.Event), agg.Label()))
	entries := make([]openfda.Entry, len(buckets))
	for i, bk := range buckets {
		entries[i] = openfda.Entry{Term: bk.Period, Count: bk.Count}
	}
	writeTable(&b, agg.Label(), entries)
	fmt.Fprintf(&b, "\nTotal reports: %s\n", FormatCount(r.TotalForQuery))
	return b.String(), nil
}
