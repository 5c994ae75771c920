package fauna

import (
	"fmt"
	"net/http"
)

var queryCheckFailureCodes = map[string]struct{}{
	"invalid_function_definition": {},
	"invalid_identifier":          {},
	"invalid_query":               {},
	"invalid_syntax":              {},
	"invalid_type":                {},
}

// ConstraintFailure describes one failed check constraint, in the order the
// service reported it.
type ConstraintFailure struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	// Paths holds the field paths that failed, one breadcrumb per entry.
	Paths [][]string `json:"paths,omitempty"`
}

// QueryError is the error object returned in the body of a failed query.
type QueryError struct {
	Code               string              `json:"code"`
	Message            string              `json:"message"`
	ConstraintFailures []ConstraintFailure `json:"constraint_failures,omitempty"`
}

// ErrQueryFailure is returned when typed access is requested on a failed
// [fauna.Response].
type ErrQueryFailure struct {
	*QueryError

	Summary string
}

func (e *ErrQueryFailure) Error() string {
	if e.Summary != "" {
		return e.Summary
	}

	if e.QueryError != nil {
		return e.QueryError.Message
	}

	return "query failed"
}

func newQueryFailure(summary string, qErr *QueryError) *ErrQueryFailure {
	return &ErrQueryFailure{QueryError: qErr, Summary: summary}
}

// ErrMalformedEnvelope is returned when the response body is not JSON or a
// page/array wrapper is internally inconsistent.
type ErrMalformedEnvelope struct {
	Reason string
	Err    error
}

func (e *ErrMalformedEnvelope) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed envelope: %s: %s", e.Reason, e.Err.Error())
	}

	return "malformed envelope: " + e.Reason
}

func (e *ErrMalformedEnvelope) Unwrap() error {
	return e.Err
}

// ErrMalformedReference is returned when a reference does not match the
// encoding declared for its field.
type ErrMalformedReference struct {
	Value  string
	Reason string
}

func (e *ErrMalformedReference) Error() string {
	return fmt.Sprintf("malformed reference %q: %s", e.Value, e.Reason)
}

// ErrTypeMismatch is only returned when decoding with [fauna.Strict].
type ErrTypeMismatch struct {
	Target string
	Err    error
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("cannot decode payload as %s: %s", e.Target, e.Err.Error())
}

func (e *ErrTypeMismatch) Unwrap() error {
	return e.Err
}

// GetServiceError maps the HTTP status of a failed query to the matching
// error type. Every returned error embeds [fauna.ErrQueryFailure].
func GetServiceError(httpStatus int, summary string, qErr *QueryError) error {
	if qErr == nil {
		return nil
	}

	failure := newQueryFailure(summary, qErr)

	switch httpStatus {
	case http.StatusBadRequest:
		if _, found := queryCheckFailureCodes[qErr.Code]; found {
			return &ErrQueryCheck{failure}
		}
		return &ErrQueryRuntime{failure}
	case http.StatusUnauthorized:
		return &ErrAuthentication{failure}
	case http.StatusForbidden:
		return &ErrAuthorization{failure}
	case http.StatusTooManyRequests:
		return &ErrThrottling{failure}
	case 440:
		return &ErrQueryTimeout{failure}
	case http.StatusInternalServerError:
		return &ErrServiceInternal{failure}
	case http.StatusServiceUnavailable:
		return &ErrServiceTimeout{failure}
	}

	return failure
}

// ErrQueryRuntime is returned when a query fails at runtime (HTTP 400).
type ErrQueryRuntime struct {
	*ErrQueryFailure
}

func (e *ErrQueryRuntime) Unwrap() error { return e.ErrQueryFailure }

// ErrQueryCheck is returned when a query fails validation (HTTP 400).
type ErrQueryCheck struct {
	*ErrQueryFailure
}

func (e *ErrQueryCheck) Unwrap() error { return e.ErrQueryFailure }

// ErrQueryTimeout is returned when a query exceeds its timeout (HTTP 440).
type ErrQueryTimeout struct {
	*ErrQueryFailure
}

func (e *ErrQueryTimeout) Unwrap() error { return e.ErrQueryFailure }

// ErrAuthentication is returned when the secret is missing or invalid (HTTP 401).
type ErrAuthentication struct {
	*ErrQueryFailure
}

func (e *ErrAuthentication) Unwrap() error { return e.ErrQueryFailure }

// ErrAuthorization is returned when the secret lacks permission (HTTP 403).
type ErrAuthorization struct {
	*ErrQueryFailure
}

func (e *ErrAuthorization) Unwrap() error { return e.ErrQueryFailure }

// ErrThrottling is returned when the query was rate limited (HTTP 429).
type ErrThrottling struct {
	*ErrQueryFailure
}

func (e *ErrThrottling) Unwrap() error { return e.ErrQueryFailure }

// ErrServiceInternal is returned for an unexpected service failure (HTTP 500).
type ErrServiceInternal struct {
	*ErrQueryFailure
}

func (e *ErrServiceInternal) Unwrap() error { return e.ErrQueryFailure }

// ErrServiceTimeout is returned when the service timed out (HTTP 503).
type ErrServiceTimeout struct {
	*ErrQueryFailure
}

func (e *ErrServiceTimeout) Unwrap() error { return e.ErrQueryFailure }
