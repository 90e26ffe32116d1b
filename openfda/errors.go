package openfda

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
	KindRemote
	KindTransport
	KindPartialAggregation
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindRemote:
		return "remote_error"
	case KindTransport:
		return "transport_error"
	case KindPartialAggregation:
		return "partial_aggregation_failure"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client operations.
// Message is always safe to show to an end user.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int   // set for KindRemote
	Err        error // underlying cause, if any
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errNoMatches is what the fetcher reports for a 404. Whether that is a hard
// failure depends on the sub-query, so only the merger turns it into an Error.
var errNoMatches = errors.New("openfda: no matching records")

func invalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: errNoMatches}
}

func remoteError(status int, msg string) *Error {
	return &Error{Kind: KindRemote, StatusCode: status, Message: msg}
}

func transportError(err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: fmt.Sprintf("A network request error occurred: %v", err),
		Err:     err,
	}
}

func partialFailure(field string, cause error) *Error {
	msg := cause.Error()
	var fe *Error
	if errors.As(cause, &fe) {
		msg = fe.Message
	}
	return &Error{
		Kind:    KindPartialAggregation,
		Message: fmt.Sprintf("A request error occurred for field %s: %s", field, msg),
		Err:     cause,
	}
}

// IsKind reports whether err is, or wraps, an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// UserMessage returns the message that may be shown to users for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "An unexpected error occurred"
}
