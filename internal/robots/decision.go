package robots

import (
	"net/url"
	"strings"
)

// decide applies standard robots.txt precedence to the path portion of u:
// the longest matching rule wins; an allow rule breaks a tie against a
// disallow rule of equal length. A ruleSet with no matched user-agent
// group and no wildcard group at all allows by default (no applicable
// rules).
func decide(rs ruleSet, u url.URL) Decision {
	if !rs.hasGroups {
		return Decision{Url: u, Allowed: true, Reason: EmptyRuleSet, CrawlDelay: rs.CrawlDelay()}
	}
	if !rs.matchedGroup {
		return Decision{Url: u, Allowed: true, Reason: UserAgentNotMatched, CrawlDelay: rs.CrawlDelay()}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	bestLen := -1
	allowed := true

	consider := func(rules []pathRule, allow bool) {
		for _, r := range rules {
			if r.prefix == "" {
				continue
			}
			if strings.HasPrefix(path, r.prefix) {
				l := len(r.prefix)
				if l > bestLen || (l == bestLen && allow) {
					bestLen = l
					allowed = allow
				}
			}
		}
	}

	consider(rs.disallowRules, false)
	consider(rs.allowRules, true)

	reason := NoMatchingRules
	if bestLen >= 0 {
		if allowed {
			reason = AllowedByRobots
		} else {
			reason = DisallowedByRobots
		}
	}

	return Decision{Url: u, Allowed: allowed, Reason: reason, CrawlDelay: rs.CrawlDelay()}
}
