package openfda

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// MinAge and MaxAge bound the age filter; the full span means "no filter".
	MinAge = 0
	MaxAge = 120

	// MaxLimit caps any requested result count.
	MaxLimit = 1000
)

// Default result counts per operation.
const (
	DefaultTopEventsLimit        = 10
	DefaultSeriousOutcomesLimit  = 6
	DefaultReportSourcesLimit    = 5
	DefaultReactionOutcomesLimit = 6
)

// Sex is the optional patient sex filter.
type Sex int

const (
	SexUnspecified Sex = iota
	SexMale
	SexFemale
)

// Code returns the value OpenFDA stores in patient.patientsex, or "" when
// the filter is not applied.
func (s Sex) Code() string {
	switch s {
	case SexMale:
		return "1"
	case SexFemale:
		return "2"
	default:
		return ""
	}
}

func (s Sex) String() string {
	switch s {
	case SexMale:
		return "Male"
	case SexFemale:
		return "Female"
	default:
		return "All"
	}
}

// ParseSex accepts the panel labels (All, Male, Female) and the raw codes.
func ParseSex(v string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all", "any", "unspecified", "0":
		return SexUnspecified, nil
	case "male", "m", "1":
		return SexMale, nil
	case "female", "f", "2":
		return SexFemale, nil
	}
	return SexUnspecified, invalidInput(fmt.Sprintf("Unknown patient sex %q; expected All, Male or Female.", v))
}

// AgeRange is an inclusive onset-age filter in years. The zero value is
// treated like the full range.
type AgeRange struct {
	Min int
	Max int
}

// FullAgeRange is the range that applies no filter.
var FullAgeRange = AgeRange{Min: MinAge, Max: MaxAge}

func (a AgeRange) normalized() AgeRange {
	if a == (AgeRange{}) {
		return FullAgeRange
	}
	return a
}

// Active reports whether the range narrows the query at all.
func (a AgeRange) Active() bool {
	a = a.normalized()
	return a.Min > MinAge || a.Max < MaxAge
}

// Validate checks bounds and ordering.
func (a AgeRange) Validate() error {
	a = a.normalized()
	if a.Min < MinAge || a.Max > MaxAge {
		return invalidInput(fmt.Sprintf("Age range must be within %d and %d.", MinAge, MaxAge))
	}
	if a.Min > a.Max {
		return invalidInput(fmt.Sprintf("Minimum age %d is greater than maximum age %d.", a.Min, a.Max))
	}
	return nil
}

// NormalizeTerm lower-cases, trims and NFC-normalizes free text.
func NormalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(s)))
}

// NormalizeDrug normalizes a drug name and resolves brand names to generics.
func NormalizeDrug(name string) (string, error) {
	n := NormalizeTerm(name)
	if n == "" {
		return "", invalidInput("Drug name cannot be empty.")
	}
	return Synonyms.Resolve(n), nil
}

// NormalizePair normalizes a drug/event pair; both are required.
func NormalizePair(drug, event string) (string, string, error) {
	d := NormalizeTerm(drug)
	e := NormalizeTerm(event)
	if d == "" || e == "" {
		return "", "", invalidInput("Drug name and event name cannot be empty.")
	}
	return Synonyms.Resolve(d), e, nil
}

// normalizeLimit applies the operation default for 0 and rejects values out
// of range.
func normalizeLimit(limit, def int) (int, error) {
	switch {
	case limit == 0:
		return def, nil
	case limit < 0 || limit > MaxLimit:
		return 0, invalidInput(fmt.Sprintf("Result count must be between 1 and %d.", MaxLimit))
	}
	return limit, nil
}
