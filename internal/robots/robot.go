// Package robots implements C2: a per-task robots.txt cache.
//
// One RobotsCache is constructed per crawl task and discarded with it
// (spec §4.2: "Cache scope: one cache per crawl task; not shared across
// tasks"). It lazily fetches and parses robots.txt per origin on first
// encounter, caching a sentinel "unknown" entry (disallow everything) for
// any origin whose robots.txt fetch or parse failed.
package robots

import (
	"context"
	"net/url"
	"time"
)

type originEntry struct {
	unknown bool
	rules   ruleSet
}

type RobotsCache struct {
	fetcher    *RobotsFetcher
	userAgent  string
	politeness time.Duration

	entries map[string]originEntry
}

func NewRobotsCache(fetcher *RobotsFetcher, userAgent string, politeness time.Duration) *RobotsCache {
	return &RobotsCache{
		fetcher:    fetcher,
		userAgent:  userAgent,
		politeness: politeness,
		entries:    make(map[string]originEntry),
	}
}

func origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// ensure lazily loads and caches the origin's robots.txt. Any failure
// (network, or parse error) caches the sentinel "unknown" entry, which
// IsAllowed treats as a hard disallow for the remainder of the task.
func (c *RobotsCache) ensure(ctx context.Context, u *url.URL) originEntry {
	key := origin(u)
	if entry, ok := c.entries[key]; ok {
		return entry
	}

	result, fetchErr := c.fetcher.Fetch(ctx, u.Scheme, u.Host)
	if fetchErr != nil {
		entry := originEntry{unknown: true}
		c.entries[key] = entry
		return entry
	}

	rs := MapResponseToRuleSet(result.Response, c.userAgent, result.FetchedAt)
	entry := originEntry{rules: rs}
	c.entries[key] = entry
	return entry
}

// IsAllowed implements is_allowed(url) -> bool. An origin cached as
// "unknown" (failed fetch) disallows every URL under it for the rest of
// the task.
func (c *RobotsCache) IsAllowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	entry := c.ensure(ctx, u)
	if entry.unknown {
		return false
	}
	return decide(entry.rules, *u).Allowed
}

// DelayFor implements delay_for(url) -> seconds: the parsed crawl-delay if
// present, else the task's configured politeness_seconds. Never negative.
func (c *RobotsCache) DelayFor(ctx context.Context, rawURL string) time.Duration {
	fallback := c.politeness
	if fallback < 0 {
		fallback = 0
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	entry := c.ensure(ctx, u)
	if entry.unknown {
		return fallback
	}
	if d := entry.rules.CrawlDelay(); d != nil && *d >= 0 {
		return *d
	}
	return fallback
}
