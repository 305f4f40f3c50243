package extractor_test

import (
	"strings"
	"testing"

	"github.com/rohmanhakim/gridcrawl/internal/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextSeparatesBlocks(t *testing.T) {
	body := []byte(`<html><body><h1>Title</h1><p>First paragraph.</p><p>Second paragraph.</p></body></html>`)
	result, err := extractor.Extract("https://example.com/page", body)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "Title")
	assert.Contains(t, result.Text, "First paragraph.")
	assert.Contains(t, result.Text, "Second paragraph.")
	assert.False(t, strings.Contains(result.Text, "<"), "extracted text must not contain raw HTML markup")
}

func TestExtractDropsScriptAndStyleContent(t *testing.T) {
	body := []byte(`<html><head><style>.a{color:red}</style></head><body><script>alert(1)</script><p>visible</p></body></html>`)
	result, err := extractor.Extract("https://example.com/page", body)
	require.NoError(t, err)
	assert.NotContains(t, result.Text, "alert")
	assert.NotContains(t, result.Text, "color:red")
	assert.Contains(t, result.Text, "visible")
}

func TestExtractLinksResolvesRelative(t *testing.T) {
	body := []byte(`<html><body><a href="/about">About</a><a href="https://other.com/x">X</a></body></html>`)
	result, err := extractor.Extract("https://example.com/dir/page", body)
	require.NoError(t, err)
	require.Len(t, result.Links, 2)
	assert.Equal(t, "https://example.com/about", result.Links[0])
	assert.Equal(t, "https://other.com/x", result.Links[1])
}

func TestExtractLinksDropsEmptyAndJavascript(t *testing.T) {
	body := []byte(`<html><body>
		<a href="">empty</a>
		<a href="javascript:void(0)">js</a>
		<a href="JavaScript:doStuff()">js2</a>
		<a href="/ok">ok</a>
	</body></html>`)
	result, err := extractor.Extract("https://example.com/", body)
	require.NoError(t, err)
	require.Len(t, result.Links, 1)
	assert.Equal(t, "https://example.com/ok", result.Links[0])
}

func TestExtractLinksPreserveOrder(t *testing.T) {
	body := []byte(`<html><body><a href="/a">a</a><a href="/b">b</a><a href="/c">c</a></body></html>`)
	result, err := extractor.Extract("https://example.com/", body)
	require.NoError(t, err)
	require.Len(t, result.Links, 3)
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}, result.Links)
}

func TestExtractInvalidPageURL(t *testing.T) {
	_, err := extractor.Extract("://not-a-url", []byte(`<html></html>`))
	assert.Error(t, err)
}
