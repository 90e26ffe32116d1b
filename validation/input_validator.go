// Package validation checks user supplied drug names, reaction terms and
// query parameters before they are turned into OpenFDA searches.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/giygas/adverse-events-api/interfaces"
	"github.com/giygas/adverse-events-api/openfda"
)

const (
	minTermLength = 2
	maxTermLength = 100
	maxTermWords  = 8
	maxRepeat     = 10
)

var (
	// Letters in any script, digits, spaces and the punctuation found in
	// drug and MedDRA reaction names.
	termRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.\+',/()]+$`)

	// Lowercase substrings that never occur in drug or reaction names.
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "url(", "@import",
		"' or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(",
		"; ", "| ", "& ", "`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
	}
)

// InputValidator implements interfaces.InputValidator.
type InputValidator struct{}

// NewInputValidator returns the validator used by the HTTP handlers and tools.
func NewInputValidator() interfaces.InputValidator {
	return &InputValidator{}
}

// ValidateTerm checks a drug or reaction name.
func (v *InputValidator) ValidateTerm(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("input cannot be empty")
	}

	n := utf8.RuneCountInString(trimmed)
	if n < minTermLength {
		return fmt.Errorf("input too short: minimum %d characters", minTermLength)
	}
	if n > maxTermLength {
		return fmt.Errorf("input too long: maximum %d characters", maxTermLength)
	}

	if len(strings.Fields(trimmed)) > maxTermWords {
		return fmt.Errorf("input too complex: maximum %d words allowed", maxTermWords)
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !termRegex.MatchString(trimmed) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and - . + ' , / ( ) are allowed")
	}

	if hasExcessiveRepetition(trimmed) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateLimit parses a limit query parameter. Empty means "use the
// operation default" and is returned as 0.
func (v *InputValidator) ValidateLimit(input string) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("limit must be a number, got: %q", input)
	}
	if limit < 1 || limit > openfda.MaxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d, got: %d", openfda.MaxLimit, limit)
	}
	return limit, nil
}

// ValidateAgeRange parses optional min/max onset ages in years. Missing
// bounds default to the full range.
func (v *InputValidator) ValidateAgeRange(minAge, maxAge string) (openfda.AgeRange, error) {
	r := openfda.FullAgeRange
	var err error
	if s := strings.TrimSpace(minAge); s != "" {
		if r.Min, err = strconv.Atoi(s); err != nil {
			return openfda.AgeRange{}, fmt.Errorf("min_age must be a whole number, got: %q", minAge)
		}
	}
	if s := strings.TrimSpace(maxAge); s != "" {
		if r.Max, err = strconv.Atoi(s); err != nil {
			return openfda.AgeRange{}, fmt.Errorf("max_age must be a whole number, got: %q", maxAge)
		}
	}
	if err := r.Validate(); err != nil {
		return openfda.AgeRange{}, err
	}
	return r, nil
}

// hasExcessiveRepetition reports whether any character repeats more than
// maxRepeat times in a row.
func hasExcessiveRepetition(input string) bool {
	run := 0
	var prev rune
	for i, r := range input {
		if i > 0 && r == prev {
			run++
			if run >= maxRepeat {
				return true
			}
			continue
		}
		prev = r
		run = 0
	}
	return false
}
