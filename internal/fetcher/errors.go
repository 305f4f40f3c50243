package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/rohmanhakim/gridcrawl/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCausePreFetchFailure  FetchErrorCause = "failed before making request"
	ErrCauseNetworkFailure   FetchErrorCause = "network failure"
	ErrCauseNonOKStatus      FetchErrorCause = "non-2xx status"
	ErrCauseBodyTooLarge     FetchErrorCause = "body exceeded size cap"
	ErrCauseBodyReadFailure  FetchErrorCause = "failed reading body"
)

// FetchError is never retryable by the fetcher itself: spec §4.3/§7 fix
// "no retry within task" as part of the contract, so C3 always returns a
// terminal-for-this-URL error and leaves any retry decision to the caller
// (which, per spec, never retries a fetch failure).
type FetchError struct {
	Message string
	Cause   FetchErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

func mapFetchErrorToObsCause(err *FetchError) obslog.Cause {
	switch err.Cause {
	case ErrCauseNetworkFailure, ErrCausePreFetchFailure:
		return obslog.CauseNetworkFailure
	case ErrCauseNonOKStatus:
		return obslog.CausePolicyDisallow
	case ErrCauseBodyTooLarge, ErrCauseBodyReadFailure:
		return obslog.CauseContentInvalid
	default:
		return obslog.CauseUnknown
	}
}
