package robots

import (
	"fmt"

	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/pkg/failure"
)

type RobotsErrorCause string

const (
	ErrCauseInvalidRobotsUrl     RobotsErrorCause = "invalid robots.txt URL"
	ErrCausePreFetchFailure      RobotsErrorCause = "failed before making fetch"
	ErrCauseHttpFetchFailure     RobotsErrorCause = "failed to fetch"
	ErrCauseHttpTooManyRequests  RobotsErrorCause = "too many requests"
	ErrCauseHttpTooManyRedirects RobotsErrorCause = "too many redirects"
	ErrCauseHttpServerError      RobotsErrorCause = "http server error"
	ErrCauseHttpUnexpectedStatus RobotsErrorCause = "unexpected http status"
	ErrCauseParseError           RobotsErrorCause = "failed to parse robots.txt"
)

type RobotsError struct {
	Message   string
	Retryable bool
	Cause     RobotsErrorCause
}

func (e *RobotsError) Error() string {
	return fmt.Sprintf("robots error: %s", e.Cause)
}

func (e *RobotsError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *RobotsError) IsRetryable() bool {
	return e.Retryable
}

// mapRobotsErrorToObsCause maps robots-local error semantics to the
// canonical obslog.Cause table. Observational only; never used to derive
// control-flow decisions.
func mapRobotsErrorToObsCause(err *RobotsError) obslog.Cause {
	switch err.Cause {
	case ErrCauseInvalidRobotsUrl:
		return obslog.CauseInvariantViolation
	case ErrCausePreFetchFailure:
		return obslog.CauseUnknown
	case ErrCauseHttpFetchFailure, ErrCauseHttpTooManyRequests, ErrCauseHttpTooManyRedirects, ErrCauseHttpServerError, ErrCauseHttpUnexpectedStatus:
		return obslog.CauseNetworkFailure
	case ErrCauseParseError:
		return obslog.CauseContentInvalid
	default:
		return obslog.CauseUnknown
	}
}
