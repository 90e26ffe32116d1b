package openfda

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Searchable fields of the drug/event endpoint.
const (
	FieldDrug          = "patient.drug.medicinalproduct"
	FieldReaction      = "patient.reaction.reactionmeddrapt"
	FieldReactionOut   = "patient.reaction.reactionoutcome"
	FieldSex           = "patient.patientsex"
	FieldOnsetAge      = "patient.patientonsetage"
	FieldSerious       = "serious"
	FieldReceiptDate   = "receiptdate"
	FieldQualification = "primarysource.qualification"
)

// andSeparator joins search clauses. It is encoded as "+AND+" on the wire.
const andSeparator = " AND "

// Clause is one conjunct of a search expression.
type Clause interface {
	render() string
}

// Term matches a field against a quoted phrase.
type Term struct {
	Field string
	Value string
}

func (t Term) render() string {
	return fmt.Sprintf(`%s:"%s"`, t.Field, strings.ReplaceAll(t.Value, `"`, ""))
}

// Flag matches a field against a bare token, e.g. serious:1.
type Flag struct {
	Field string
	Value string
}

func (f Flag) render() string {
	return f.Field + ":" + f.Value
}

// Range matches a numeric field inclusively.
type Range struct {
	Field    string
	Min, Max int
}

func (r Range) render() string {
	return fmt.Sprintf("%s:[%d TO %d]", r.Field, r.Min, r.Max)
}

// Exists matches records where the field is present.
type Exists struct {
	Field string
}

func (e Exists) render() string {
	return "_exists_:" + e.Field
}

// Query is one request against the endpoint. A Query with no CountField asks
// only for the matching total.
type Query struct {
	Search     []Clause
	CountField string
	Exact      bool
	Limit      int
}

// And returns a copy of q with extra clauses appended.
func (q Query) And(clauses ...Clause) Query {
	search := make([]Clause, 0, len(q.Search)+len(clauses))
	search = append(search, q.Search...)
	search = append(search, clauses...)
	q.Search = search
	return q
}

// Totals returns a copy of q without grouping, used to read meta.results.total.
func (q Query) Totals() Query {
	q.CountField = ""
	q.Exact = false
	q.Limit = 0
	return q
}

// SearchExpr renders the search parameter before URL encoding.
func (q Query) SearchExpr() string {
	parts := make([]string, len(q.Search))
	for i, c := range q.Search {
		parts[i] = c.render()
	}
	return strings.Join(parts, andSeparator)
}

// CountExpr renders the count parameter, adding .exact when grouping by the
// unnormalized string value.
func (q Query) CountExpr() string {
	if q.CountField == "" {
		return ""
	}
	if q.Exact {
		return q.CountField + ".exact"
	}
	return q.CountField
}

// Values renders q as URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if len(q.Search) > 0 {
		v.Set("search", q.SearchExpr())
	}
	if c := q.CountExpr(); c != "" {
		v.Set("count", c)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Encode renders q as a raw query string.
func (q Query) Encode() string {
	return q.Values().Encode()
}

func drugQuery(drug string) Query {
	return Query{Search: []Clause{Term{Field: FieldDrug, Value: drug}}}
}

func pairQuery(drug, event string) Query {
	return drugQuery(drug).And(Term{Field: FieldReaction, Value: event})
}

// filteredDrugQuery adds the optional sex and age clauses.
func filteredDrugQuery(drug string, sex Sex, age AgeRange) Query {
	q := drugQuery(drug)
	if code := sex.Code(); code != "" {
		q = q.And(Term{Field: FieldSex, Value: code})
	}
	if age.Active() {
		a := age.normalized()
		q = q.And(Range{Field: FieldOnsetAge, Min: a.Min, Max: a.Max})
	}
	return q
}

// BuildTopEventsQuery returns the grouped reaction query for a normalized request.
func BuildTopEventsQuery(drug string, limit int, sex Sex, age AgeRange) Query {
	q := filteredDrugQuery(drug, sex, age)
	q.CountField = FieldReaction
	q.Exact = true
	q.Limit = limit
	return q
}

// BuildSeriousBaseQuery returns the total query over serious reports.
func BuildSeriousBaseQuery(drug string) Query {
	return drugQuery(drug).And(Flag{Field: FieldSerious, Value: "1"})
}

// BuildTimeSeriesQuery groups pair reports by receipt date.
func BuildTimeSeriesQuery(drug, event string) Query {
	q := pairQuery(drug, event)
	q.CountField = FieldReceiptDate
	return q
}

// BuildCountQuery groups drug reports by a coded field without limit; the
// client ranks and truncates.
func BuildCountQuery(drug, field string) Query {
	q := drugQuery(drug)
	q.CountField = field
	return q
}
