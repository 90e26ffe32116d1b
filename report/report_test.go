package report

import (
	"strings"
	"sync"
	"testing"

	"github.com/giygas/adverse-events-api/openfda"
)

func TestTitle(t *testing.T) {
	tests := map[string]string{
		"lisinopril":          "Lisinopril",
		"injection site pain": "Injection Site Pain",
		"":                    "",
	}
	for in, want := range tests {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTitleAndFormatCountConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				if got := Title("lisinopril cough"); got != "Lisinopril Cough" {
					t.Errorf("Title = %q", got)
					return
				}
				if got := FormatCount(12345); got != "12,345" {
					t.Errorf("FormatCount = %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567"}
	for in, want := range tests {
		if got := FormatCount(in); got != want {
			t.Errorf("FormatCount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRankedSummaryTopEvents(t *testing.T) {
	r := &openfda.Result{
		Operation: openfda.OpTopEvents,
		Drug:      "lisinopril",
		Entries: []openfda.Entry{
			{Term: "COUGH", Count: 1200},
			{Term: "DIZZINESS", Count: 80},
		},
		TotalForQuery: 5000,
	}
	s := RankedSummary(r)

	lines := strings.Split(s, "\n")
	if lines[0] != "Top Adverse Events for 'Lisinopril'" {
		t.Errorf("unexpected heading %q", lines[0])
	}
	for _, want := range []string{Source, Disclaimer, "Adverse Event", "Report Count", "COUGH", "1,200", "DIZZINESS", "Total matching reports: 5,000"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary missing %q:\n%s", want, s)
		}
	}
	if strings.Index(s, "COUGH") > strings.Index(s, "DIZZINESS") {
		t.Error("entries must keep their ranked order")
	}
}

func TestRankedSummaryHeadings(t *testing.T) {
	tests := []struct {
		op      openfda.Operation
		heading string
		column  string
	}{
		{openfda.OpSeriousOutcomes, "Top Serious Outcomes for 'Aspirin'", "Serious Outcome"},
		{openfda.OpReactionOutcomes, "Reaction Outcomes for 'Aspirin'", "Outcome"},
		{openfda.OpReportSources, "Report Sources for 'Aspirin'", "Reporter"},
	}
	for _, tt := range tests {
		s := Summary(&openfda.Result{
			Operation: tt.op,
			Drug:      "aspirin",
			Entries:   []openfda.Entry{{Term: "Physician", Count: 3}},
		})
		if !strings.HasPrefix(s, tt.heading+"\n") {
			t.Errorf("%s: summary should start with %q, got %q", tt.op, tt.heading, s)
		}
		if !strings.Contains(s, tt.column) {
			t.Errorf("%s: summary missing column %q", tt.op, tt.column)
		}
	}
}

func TestRankedSummaryEmpty(t *testing.T) {
	s := RankedSummary(&openfda.Result{Operation: openfda.OpTopEvents, Drug: "nodrug"})
	if !strings.HasPrefix(s, "No data found for 'nodrug'") {
		t.Errorf("unexpected empty summary %q", s)
	}
}

func TestPairSummary(t *testing.T) {
	r := &openfda.Result{
		Operation:     openfda.OpPairFrequency,
		Drug:          "ozempic",
		Event:         "nausea",
		TotalForQuery: 50,
		TotalForDrug:  1000,
	}
	s := Summary(r)
	for _, want := range []string{
		"Found 50 reports for the combination of 'Ozempic' and 'Nausea'.",
		"This is 5.00% of the 1,000 reports for 'Ozempic'.",
		Source,
		Disclaimer,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("pair summary missing %q:\n%s", want, s)
		}
	}
}

func TestPairSummaryWithoutDenominator(t *testing.T) {
	s := PairSummary(&openfda.Result{Operation: openfda.OpPairFrequency, Drug: "a", Event: "b"})
	if strings.Contains(s, "This is") {
		t.Errorf("percentage line needs a denominator: %s", s)
	}
	if !strings.HasPrefix(s, "Found 0 reports") {
		t.Errorf("unexpected summary %q", s)
	}
}

func TestTrendSummary(t *testing.T) {
	r := &openfda.Result{
		Operation: openfda.OpTimeSeries,
		Drug:      "metformin",
		Event:     "lactic acidosis",
		Entries: []openfda.Entry{
			{Term: "20200105", Count: 2},
			{Term: "20200420", Count: 3},
			{Term: "20220101", Count: 4},
		},
		TotalForQuery: 9,
	}

	yearly, err := TrendSummary(r, Yearly)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Report Trend for 'Metformin' and 'Lactic Acidosis' (by Year)", "2020", "2021", "2022", "Total reports: 9"} {
		if !strings.Contains(yearly, want) {
			t.Errorf("yearly summary missing %q:\n%s", want, yearly)
		}
	}

	quarterly, err := TrendSummary(r, Quarterly)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(quarterly, "2020-Q2") || !strings.Contains(quarterly, "(by Quarter)") {
		t.Errorf("quarterly summary unexpected:\n%s", quarterly)
	}
}
