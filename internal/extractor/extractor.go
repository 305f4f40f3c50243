// Package extractor implements C4: extract(body) -> {text, links}.
package extractor

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type Result struct {
	Text  string
	Links []string
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"header": true, "footer": true, "nav": true, "main": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "blockquote": true, "pre": true,
	"br": true, "hr": true, "table": true, "ul": true, "ol": true,
}

// Extract parses body leniently and returns the concatenated visible text
// (block elements separated by newlines, trimmed) plus the ordered list of
// absolute link targets. Empty and javascript: hrefs are dropped; relative
// hrefs are resolved against pageURL.
func Extract(pageURL string, body []byte) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("extractor: parse html: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return Result{}, fmt.Errorf("extractor: invalid page url: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, n := range doc.Selection.Nodes {
		walkText(n, &lines)
	}
	text := collapseBlank(lines)

	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		resolved, err := resolve(base, href)
		if err != nil {
			return
		}
		links = append(links, resolved)
	})

	return Result{Text: text, Links: links}, nil
}

func resolve(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// walkText collects trimmed text runs, emitting a blank-line marker after
// each block-level element so that visually-separated content stays
// separated once the lines are joined.
func walkText(n *html.Node, lines *[]string) {
	if n == nil {
		return
	}
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*lines = append(*lines, t)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, lines)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		*lines = append(*lines, "")
	}
}

// collapseBlank joins lines with newlines, collapsing consecutive blank
// markers down to a single separator and trimming the result.
func collapseBlank(lines []string) string {
	var out []string
	prevBlank := true
	for _, l := range lines {
		if l == "" {
			if !prevBlank {
				out = append(out, "")
			}
			prevBlank = true
			continue
		}
		out = append(out, l)
		prevBlank = false
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
