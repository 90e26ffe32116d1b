// Package handlers provides the HTTP endpoints of the adverse-events API. Every
// endpoint validates its path and query parameters, runs one query through the
// injected QueryService and answers with JSON, or with the plain-text summary
// when called with ?format=text.
package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/adverse-events-api/interfaces"
	"github.com/giygas/adverse-events-api/openfda"
	"github.com/giygas/adverse-events-api/report"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	service   interfaces.QueryService
	validator interfaces.InputValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(service interfaces.QueryService, validator interfaces.InputValidator, health interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		service:   service,
		validator: validator,
		health:    health,
	}
}

// ResultResponse is the JSON body of every query endpoint.
type ResultResponse struct {
	*openfda.Result
	Percentage  *float64        `json:"percentage,omitempty"`
	Aggregation string          `json:"aggregation,omitempty"`
	Buckets     []report.Bucket `json:"buckets,omitempty"`
	Summary     string          `json:"summary"`
}

func wantsText(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("format"), "text")
}

// pathTerm reads and validates a drug or event path parameter. chi matches
// on RawPath when the request has one, and its parameters are then still
// escaped.
func (h *HTTPHandlerImpl) pathTerm(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	term := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(term)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
			return "", false
		}
		term = unescaped
	}
	if err := h.validator.ValidateTerm(term); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid "+name+": "+err.Error())
		return "", false
	}
	return term, true
}

func (h *HTTPHandlerImpl) limit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit, err := h.validator.ValidateLimit(r.URL.Query().Get("limit"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return limit, true
}

// respond writes res as JSON, or as text when asked.
func respond(w http.ResponseWriter, r *http.Request, resp ResultResponse) {
	if wantsText(r) {
		RespondWithText(w, http.StatusOK, resp.Summary)
		return
	}
	RespondWithJSON(w, http.StatusOK, resp)
}

// ServeTopEvents handles GET /v1/events/{drug}?limit=&sex=&min_age=&max_age=
func (h *HTTPHandlerImpl) ServeTopEvents(w http.ResponseWriter, r *http.Request) {
	drug, ok := h.pathTerm(w, r, "drug")
	if !ok {
		return
	}
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	sex, err := openfda.ParseSex(q.Get("sex"))
	if err != nil {
		respondWithQueryError(w, r, err)
		return
	}
	age, err := h.validator.ValidateAgeRange(q.Get("min_age"), q.Get("max_age"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, openfda.UserMessage(err))
		return
	}

	res, err := h.service.TopAdverseEvents(r.Context(), openfda.TopEventsRequest{
		Drug:  drug,
		Limit: limit,
		Sex:   sex,
		Age:   age,
	})
	if err != nil {
		respondWithQueryError(w, r, err)
		return
	}
	respond(w, r, ResultResponse{Result: res, Summary: report.RankedSummary(res)})
}

// rankedHandler serves the drug-only ranked endpoints.
func (h *HTTPHandlerImpl) rankedHandler(w http.ResponseWriter, r *http.Request, run func(r *http.Request, drug string, limit int) (*openfda.Result, error)) {
	drug, ok := h.pathTerm(w, r, "drug")
	if !ok {
		return
	}
	limit, ok := h.limit(w, r)
	if !ok {
		return
	}

	res, err := run(r, drug, limit)
	if err != nil {
		respondWithQueryError(w, r, err)
		return
	}
	respond(w, r, ResultResponse{Result: res, Summary: report.RankedSummary(res)})
}

// ServeSeriousOutcomes handles GET /v1/outcomes/serious/{drug}?limit=
func (h *HTTPHandlerImpl) ServeSeriousOutcomes(w http.ResponseWriter, r *http.Request) {
	h.rankedHandler(w, r, func(r *http.Request, drug string, limit int) (*openfda.Result, error) {
		return h.service.SeriousOutcomes(r.Context(), drug, limit)
	})
}

// ServeReactionOutcomes handles GET /v1/outcomes/reactions/{drug}?limit=
func (h *HTTPHandlerImpl) ServeReactionOutcomes(w http.ResponseWriter, r *http.Request) {
	h.rankedHandler(w, r, func(r *http.Request, drug string, limit int) (*openfda.Result, error) {
		return h.service.ReactionOutcomes(r.Context(), drug, limit)
	})
}

// ServeReportSources handles GET /v1/sources/{drug}?limit=
func (h *HTTPHandlerImpl) ServeReportSources(w http.ResponseWriter, r *http.Request) {
	h.rankedHandler(w, r, func(r *http.Request, drug string, limit int) (*openfda.Result, error) {
		return h.service.ReportSources(r.Context(), drug, limit)
	})
}

// ServePairFrequency handles GET /v1/frequency/{drug}/{event}
func (h *HTTPHandlerImpl) ServePairFrequency(w http.ResponseWriter, r *http.Request) {
	drug, ok := h.pathTerm(w, r, "drug")
	if !ok {
		return
	}
	event, ok := h.pathTerm(w, r, "event")
	if !ok {
		return
	}

	res, err := h.service.PairFrequency(r.Context(), drug, event)
	if err != nil {
		respondWithQueryError(w, r, err)
		return
	}

	resp := ResultResponse{Result: res, Summary: report.PairSummary(res)}
	if pct, ok := res.Percentage(); ok {
		resp.Percentage = &pct
	}
	respond(w, r, resp)
}

// ServeTimeSeries handles GET /v1/trends/{drug}/{event}?aggregation=yearly|quarterly
func (h *HTTPHandlerImpl) ServeTimeSeries(w http.ResponseWriter, r *http.Request) {
	drug, ok := h.pathTerm(w, r, "drug")
	if !ok {
		return
	}
	event, ok := h.pathTerm(w, r, "event")
	if !ok {
		return
	}
	agg, err := report.ParseAggregation(r.URL.Query().Get("aggregation"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "aggregation must be yearly or quarterly")
		return
	}

	res, err := h.service.TimeSeries(r.Context(), drug, event)
	if err != nil {
		respondWithQueryError(w, r, err)
		return
	}

	buckets, err := report.Bucketize(res.Entries, agg)
	if err != nil {
		respondWithQueryError(w, r, err)
		return
	}
	summary, _ := report.TrendSummary(res, agg)
	respond(w, r, ResultResponse{
		Result:      res,
		Aggregation: string(agg),
		Buckets:     buckets,
		Summary:     summary,
	})
}

// HealthCheck handles GET /health
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, code := h.health.HealthCheck()
	data["status"] = status
	RespondWithJSON(w, code, data)
}
