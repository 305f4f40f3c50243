package obslog_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/gridcrawl/internal/obslog"
	"github.com/stretchr/testify/assert"
)

func TestLogfmtSinkRecordFetch(t *testing.T) {
	var buf bytes.Buffer
	sink := obslog.NewLogfmtSink(&buf)

	sink.RecordFetch("https://example.com/", 200, 150*time.Millisecond, "text/html", 2)

	out := buf.String()
	assert.Contains(t, out, "event=fetch")
	assert.Contains(t, out, "url=https://example.com/")
	assert.Contains(t, out, "status=200")
	assert.Contains(t, out, "depth=2")
}

func TestLogfmtSinkRecordError(t *testing.T) {
	var buf bytes.Buffer
	sink := obslog.NewLogfmtSink(&buf)

	sink.RecordError("fetcher", "Fetch", obslog.CauseNetworkFailure, errors.New("boom"), obslog.A(obslog.AttrURL, "https://example.com/"))

	out := buf.String()
	assert.Contains(t, out, "cause=network_failure")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "url=https://example.com/")
}

func TestLogfmtSinkRecordTaskTransition(t *testing.T) {
	var buf bytes.Buffer
	sink := obslog.NewLogfmtSink(&buf)

	sink.RecordTaskTransition("task-1", "queued", "started")

	out := buf.String()
	assert.Contains(t, out, "task_id=task-1")
	assert.Contains(t, out, "from=queued")
	assert.Contains(t, out, "to=started")
}
