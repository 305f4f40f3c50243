package searchindex

import (
	"context"
	"strings"
	"sync"
)

// MemIndex is the in-memory Index fake. Its Search emulates, at reduced
// fidelity, the three modes a real full-text engine would support:
// match (any query word present), phrase (exact substring), and boolean
// (space-separated terms, a leading "-" negates a term, otherwise all
// remaining terms must be present).
type MemIndex struct {
	mu      sync.Mutex
	docs    map[string]Doc
	created bool
}

func NewMemIndex() *MemIndex {
	return &MemIndex{docs: make(map[string]Doc)}
}

func (idx *MemIndex) EnsureIndex(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.created = true
	return nil
}

func (idx *MemIndex) Submit(_ context.Context, docID string, doc Doc) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.docs[docID] = doc
	return nil
}

func (idx *MemIndex) Count(_ context.Context) (int, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.docs), nil
}

func (idx *MemIndex) Ping(_ context.Context) error {
	return nil
}

func (idx *MemIndex) Search(_ context.Context, mode Mode, query string, size int) ([]Hit, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if !idx.created {
		return nil, ErrIndexMissing
	}

	var matches func(text string) bool
	switch mode {
	case ModePhrase:
		needle := strings.ToLower(strings.TrimSpace(query))
		matches = func(text string) bool { return strings.Contains(strings.ToLower(text), needle) }
	case ModeBoolean:
		matches = booleanMatcher(query)
	default: // ModeMatch
		words := strings.Fields(strings.ToLower(query))
		matches = func(text string) bool {
			lower := strings.ToLower(text)
			for _, w := range words {
				if strings.Contains(lower, w) {
					return true
				}
			}
			return false
		}
	}

	var hits []Hit
	for _, doc := range idx.docs {
		if matches(doc.Text) {
			hits = append(hits, Hit{URL: doc.URL, Text: doc.Text})
			if len(hits) == size {
				break
			}
		}
	}
	return hits, nil
}

func booleanMatcher(query string) func(string) bool {
	terms := strings.Fields(query)
	return func(text string) bool {
		lower := strings.ToLower(text)
		for _, term := range terms {
			if strings.HasPrefix(term, "-") {
				if strings.Contains(lower, strings.ToLower(strings.TrimPrefix(term, "-"))) {
					return false
				}
				continue
			}
			if !strings.Contains(lower, strings.ToLower(term)) {
				return false
			}
		}
		return true
	}
}
