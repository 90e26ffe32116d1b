package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/giygas/adverse-events-api/logging"
	"github.com/giygas/adverse-events-api/openfda"
	"github.com/giygas/adverse-events-api/report"
)

// DrugInput is the input of the drug-only ranked tools.
type DrugInput struct {
	DrugName string `json:"drug_name"`
	Limit    int    `json:"limit,omitempty"`
}

// TopEventsInput is the input of top_adverse_events.
type TopEventsInput struct {
	DrugName   string `json:"drug_name"`
	PatientSex string `json:"patient_sex,omitempty"`
	MinAge     *int   `json:"min_age,omitempty"`
	MaxAge     *int   `json:"max_age,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// PairInput is the input of drug_event_frequency.
type PairInput struct {
	DrugName  string `json:"drug_name"`
	EventName string `json:"event_name"`
}

// TimeSeriesInput is the input of event_time_series.
type TimeSeriesInput struct {
	DrugName    string `json:"drug_name"`
	EventName   string `json:"event_name"`
	Aggregation string `json:"aggregation,omitempty"`
}

// RankedResponse is returned by the ranked tools.
type RankedResponse struct {
	Drug         string          `json:"drug"`
	Entries      []openfda.Entry `json:"entries"`
	TotalReports int             `json:"total_reports"`
	Summary      string          `json:"summary"`
}

// FrequencyResponse is returned by drug_event_frequency.
type FrequencyResponse struct {
	Drug        string   `json:"drug"`
	Event       string   `json:"event"`
	ReportCount int      `json:"report_count"`
	DrugTotal   int      `json:"drug_total"`
	Percentage  *float64 `json:"percentage,omitempty"`
	Summary     string   `json:"summary"`
}

// TimeSeriesResponse is returned by event_time_series.
type TimeSeriesResponse struct {
	Drug         string          `json:"drug"`
	Event        string          `json:"event"`
	Aggregation  string          `json:"aggregation"`
	Buckets      []report.Bucket `json:"buckets"`
	TotalReports int             `json:"total_reports"`
	Summary      string          `json:"summary"`
}

// toolError turns a failure into the plain message the tool result carries.
func toolError(tool string, err error) error {
	logging.Warn("MCP tool failed", "tool", tool, "kind", openfda.KindOf(err).String(), "error", err)
	return errors.New(openfda.UserMessage(err))
}

// textResult puts the summary first so clients that only read text content
// still get a readable answer.
func textResult(summary string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: summary}},
	}
}

func (s *Server) checkTerm(kind, value string) error {
	if err := s.validator.ValidateTerm(value); err != nil {
		return fmt.Errorf("invalid %s: %w", kind, err)
	}
	return nil
}

func checkLimit(limit int) error {
	if limit < 0 || limit > openfda.MaxLimit {
		return fmt.Errorf("limit must be between 1 and %d", openfda.MaxLimit)
	}
	return nil
}

func rankedResponse(res *openfda.Result) RankedResponse {
	entries := res.Entries
	if entries == nil {
		entries = []openfda.Entry{}
	}
	return RankedResponse{
		Drug:         res.Drug,
		Entries:      entries,
		TotalReports: res.TotalForQuery,
		Summary:      report.RankedSummary(res),
	}
}

func (s *Server) handleTopEvents(ctx context.Context, req *mcp.CallToolRequest, input TopEventsInput) (*mcp.CallToolResult, RankedResponse, error) {
	const tool = "top_adverse_events"
	if err := s.checkTerm("drug name", input.DrugName); err != nil {
		return nil, RankedResponse{}, err
	}
	if err := checkLimit(input.Limit); err != nil {
		return nil, RankedResponse{}, err
	}
	sex, err := openfda.ParseSex(input.PatientSex)
	if err != nil {
		return nil, RankedResponse{}, toolError(tool, err)
	}
	age := openfda.FullAgeRange
	if input.MinAge != nil {
		age.Min = *input.MinAge
	}
	if input.MaxAge != nil {
		age.Max = *input.MaxAge
	}

	logging.Debug("MCP tool call", "tool", tool, "drug", input.DrugName)
	res, err := s.service.TopAdverseEvents(ctx, openfda.TopEventsRequest{
		Drug:  input.DrugName,
		Limit: input.Limit,
		Sex:   sex,
		Age:   age,
	})
	if err != nil {
		return nil, RankedResponse{}, toolError(tool, err)
	}
	out := rankedResponse(res)
	return textResult(out.Summary), out, nil
}

// ranked runs one of the drug-only ranked operations.
func (s *Server) ranked(ctx context.Context, tool string, input DrugInput, run func(context.Context, string, int) (*openfda.Result, error)) (*mcp.CallToolResult, RankedResponse, error) {
	if err := s.checkTerm("drug name", input.DrugName); err != nil {
		return nil, RankedResponse{}, err
	}
	if err := checkLimit(input.Limit); err != nil {
		return nil, RankedResponse{}, err
	}

	logging.Debug("MCP tool call", "tool", tool, "drug", input.DrugName)
	res, err := run(ctx, input.DrugName, input.Limit)
	if err != nil {
		return nil, RankedResponse{}, toolError(tool, err)
	}
	out := rankedResponse(res)
	return textResult(out.Summary), out, nil
}

func (s *Server) handleSeriousOutcomes(ctx context.Context, req *mcp.CallToolRequest, input DrugInput) (*mcp.CallToolResult, RankedResponse, error) {
	return s.ranked(ctx, "serious_outcomes", input, s.service.SeriousOutcomes)
}

func (s *Server) handleReactionOutcomes(ctx context.Context, req *mcp.CallToolRequest, input DrugInput) (*mcp.CallToolResult, RankedResponse, error) {
	return s.ranked(ctx, "reaction_outcomes", input, s.service.ReactionOutcomes)
}

func (s *Server) handleReportSources(ctx context.Context, req *mcp.CallToolRequest, input DrugInput) (*mcp.CallToolResult, RankedResponse, error) {
	return s.ranked(ctx, "report_sources", input, s.service.ReportSources)
}

func (s *Server) handlePairFrequency(ctx context.Context, req *mcp.CallToolRequest, input PairInput) (*mcp.CallToolResult, FrequencyResponse, error) {
	const tool = "drug_event_frequency"
	if err := s.checkTerm("drug name", input.DrugName); err != nil {
		return nil, FrequencyResponse{}, err
	}
	if err := s.checkTerm("event name", input.EventName); err != nil {
		return nil, FrequencyResponse{}, err
	}

	logging.Debug("MCP tool call", "tool", tool, "drug", input.DrugName, "event", input.EventName)
	res, err := s.service.PairFrequency(ctx, input.DrugName, input.EventName)
	if err != nil {
		return nil, FrequencyResponse{}, toolError(tool, err)
	}

	out := FrequencyResponse{
		Drug:        res.Drug,
		Event:       res.Event,
		ReportCount: res.TotalForQuery,
		DrugTotal:   res.TotalForDrug,
		Summary:     report.PairSummary(res),
	}
	if pct, ok := res.Percentage(); ok {
		out.Percentage = &pct
	}
	return textResult(out.Summary), out, nil
}

func (s *Server) handleTimeSeries(ctx context.Context, req *mcp.CallToolRequest, input TimeSeriesInput) (*mcp.CallToolResult, TimeSeriesResponse, error) {
	const tool = "event_time_series"
	if err := s.checkTerm("drug name", input.DrugName); err != nil {
		return nil, TimeSeriesResponse{}, err
	}
	if err := s.checkTerm("event name", input.EventName); err != nil {
		return nil, TimeSeriesResponse{}, err
	}
	agg, err := report.ParseAggregation(input.Aggregation)
	if err != nil {
		return nil, TimeSeriesResponse{}, err
	}

	logging.Debug("MCP tool call", "tool", tool, "drug", input.DrugName, "event", input.EventName)
	res, err := s.service.TimeSeries(ctx, input.DrugName, input.EventName)
	if err != nil {
		return nil, TimeSeriesResponse{}, toolError(tool, err)
	}

	buckets, err := report.Bucketize(res.Entries, agg)
	if err != nil {
		return nil, TimeSeriesResponse{}, toolError(tool, err)
	}
	summary, _ := report.TrendSummary(res, agg)
	out := TimeSeriesResponse{
		Drug:         res.Drug,
		Event:        res.Event,
		Aggregation:  string(agg),
		Buckets:      buckets,
		TotalReports: res.TotalForQuery,
		Summary:      summary,
	}
	return textResult(out.Summary), out, nil
}
