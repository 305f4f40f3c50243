package obslog

import (
	"io"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
)

// LogfmtSink encodes every recorded event as a logfmt line. It is the
// production Sink: one encoder guarded by a mutex, since workers call it
// from their own goroutine but the underlying writer (typically os.Stderr)
// is shared.
type LogfmtSink struct {
	mu  sync.Mutex
	enc *logfmt.Encoder
}

func NewLogfmtSink(w io.Writer) *LogfmtSink {
	return &LogfmtSink{enc: logfmt.NewEncoder(w)}
}

func (s *LogfmtSink) write(kv ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.EncodeKeyvals(kv...)
	_ = s.enc.EndRecord()
}

func (s *LogfmtSink) RecordFetch(url string, status int, duration time.Duration, contentType string, depth int) {
	s.write(
		"event", "fetch",
		"url", url,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"content_type", contentType,
		"depth", depth,
	)
}

func (s *LogfmtSink) RecordTaskTransition(taskID, from, to string, attrs ...Attr) {
	kv := []interface{}{
		"event", "task_transition",
		"task_id", taskID,
		"from", from,
		"to", to,
	}
	s.write(append(kv, attrsToKV(attrs)...)...)
}

func (s *LogfmtSink) RecordError(pkg, action string, cause Cause, err error, attrs ...Attr) {
	kv := []interface{}{
		"event", "error",
		"pkg", pkg,
		"action", action,
		"cause", cause.String(),
	}
	if err != nil {
		kv = append(kv, "error", err.Error())
	}
	s.write(append(kv, attrsToKV(attrs)...)...)
}

func (s *LogfmtSink) RecordSearch(keywords, mode string, size, results int) {
	s.write(
		"event", "search",
		"keywords", keywords,
		"mode", mode,
		"size", size,
		"results", results,
	)
}

func attrsToKV(attrs []Attr) []interface{} {
	kv := make([]interface{}, 0, len(attrs)*2)
	for _, a := range attrs {
		kv = append(kv, string(a.Key), a.Value)
	}
	return kv
}
