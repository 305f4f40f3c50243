// Package searchindex implements the Full-text index external interface
// (spec §5, §4.10): index name "web_pages", submit(doc_id, {url, text}),
// search(match|match_phrase|boolean, size), count, ping.
package searchindex

import "context"

type Mode string

const (
	ModeMatch   Mode = "match"
	ModePhrase  Mode = "phrase"
	ModeBoolean Mode = "boolean"
)

const IndexName = "web_pages"

// Doc mirrors the data model's IndexDoc (spec §3), minus DocID which is
// the submission key rather than a field of the body.
type Doc struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Hit is one search result: spec §4.10 only requires {url, text} back out.
type Hit struct {
	URL  string
	Text string
}

// Index is the port C6 (submission) and C10 (search/metrics) depend on.
type Index interface {
	// EnsureIndex creates the index with the recommended analyzer
	// (lowercase + English stopwords + Porter stemmer) if it does not
	// already exist.
	EnsureIndex(ctx context.Context) error
	// Submit is idempotent on docID: re-submitting the same doc_id
	// overwrites rather than duplicates.
	Submit(ctx context.Context, docID string, doc Doc) error
	Search(ctx context.Context, mode Mode, query string, size int) ([]Hit, error)
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}
