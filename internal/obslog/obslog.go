// Package obslog is the structured-logging sink every component records
// through. It is observational only: nothing downstream of a record call
// may branch on what gets logged here.
package obslog

import "time"

// Cause is a closed, canonical classification used exclusively for
// observability (logging, metrics, reporting).
//
// Rules:
//   - Cause is for observability only.
//   - It must never be used to derive retry, continuation, or abort decisions.
//   - Cause values MUST have stable, package-agnostic semantics.
//   - Packages MAY map their local errors to Cause but MUST NOT invent new
//     meanings.
//
// If a failure does not clearly match a defined cause, CauseUnknown MUST be
// used.
type Cause int

const (
	CauseUnknown Cause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseIndexFailure
	CauseInvariantViolation
)

func (c Cause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseIndexFailure:
		return "index_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// AttrKey names a structured log field. Keeping this a closed set (rather
// than bare strings scattered through call sites) is what lets every
// component's logs line up under the same keys.
type AttrKey string

const (
	AttrURL        AttrKey = "url"
	AttrHost       AttrKey = "host"
	AttrTaskID     AttrKey = "task_id"
	AttrDocID      AttrKey = "doc_id"
	AttrDepth      AttrKey = "depth"
	AttrHTTPStatus AttrKey = "http_status"
	AttrRetryCount AttrKey = "retry_count"
	AttrFrom       AttrKey = "from"
	AttrTo         AttrKey = "to"
	AttrReason     AttrKey = "reason"
)

type Attr struct {
	Key   AttrKey
	Value string
}

func A(key AttrKey, value string) Attr { return Attr{Key: key, Value: value} }

// Sink is the logging port every component records through. Allowed
// values: primitive values, timestamps, URLs as plain strings, status
// codes, durations, identifiers. Never a behavior-bearing object.
type Sink interface {
	RecordFetch(url string, status int, duration time.Duration, contentType string, depth int)
	RecordTaskTransition(taskID, from, to string, attrs ...Attr)
	RecordError(pkg, action string, cause Cause, err error, attrs ...Attr)
	RecordSearch(keywords, mode string, size, results int)
}

// NoopSink discards everything; useful as the default in tests that don't
// care about observability output.
type NoopSink struct{}

func (NoopSink) RecordFetch(string, int, time.Duration, string, int) {}
func (NoopSink) RecordTaskTransition(string, string, string, ...Attr) {}
func (NoopSink) RecordError(string, string, Cause, error, ...Attr) {}
func (NoopSink) RecordSearch(string, string, int, int) {}
