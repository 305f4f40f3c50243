package searchindex_test

import (
	"context"
	"testing"

	"github.com/rohmanhakim/gridcrawl/internal/searchindex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedIndex(t *testing.T) *searchindex.MemIndex {
	t.Helper()
	idx := searchindex.NewMemIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureIndex(ctx))
	require.NoError(t, idx.Submit(ctx, "doc1", searchindex.Doc{URL: "https://a.com/", Text: "the quick brown fox"}))
	require.NoError(t, idx.Submit(ctx, "doc2", searchindex.Doc{URL: "https://b.com/", Text: "lazy dog sleeps"}))
	return idx
}

func TestSearchMissingIndex(t *testing.T) {
	idx := searchindex.NewMemIndex()
	_, err := idx.Search(context.Background(), searchindex.ModeMatch, "fox", 10)
	assert.ErrorIs(t, err, searchindex.ErrIndexMissing)
}

func TestSearchMatchMode(t *testing.T) {
	idx := seedIndex(t)
	hits, err := idx.Search(context.Background(), searchindex.ModeMatch, "fox", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "https://a.com/", hits[0].URL)
}

func TestSearchPhraseModeRequiresExactSubstring(t *testing.T) {
	idx := seedIndex(t)
	hits, err := idx.Search(context.Background(), searchindex.ModePhrase, "quick brown", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	hits, err = idx.Search(context.Background(), searchindex.ModePhrase, "brown quick", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 0)
}

func TestSearchBooleanModeNegation(t *testing.T) {
	idx := seedIndex(t)
	hits, err := idx.Search(context.Background(), searchindex.ModeBoolean, "dog -lazy", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 0)

	hits, err = idx.Search(context.Background(), searchindex.ModeBoolean, "dog sleeps", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "https://b.com/", hits[0].URL)
}

func TestSearchRespectsSize(t *testing.T) {
	idx := searchindex.NewMemIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureIndex(ctx))
	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Submit(ctx, string(rune('a'+i)), searchindex.Doc{URL: "u", Text: "match me"}))
	}
	hits, err := idx.Search(ctx, searchindex.ModeMatch, "match", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestCount(t *testing.T) {
	idx := seedIndex(t)
	count, err := idx.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSubmitIsIdempotentByDocID(t *testing.T) {
	idx := searchindex.NewMemIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureIndex(ctx))
	require.NoError(t, idx.Submit(ctx, "doc1", searchindex.Doc{URL: "https://a.com/", Text: "v1"}))
	require.NoError(t, idx.Submit(ctx, "doc1", searchindex.Doc{URL: "https://a.com/", Text: "v2"}))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
