// Package urlcanon implements C1: URL normalization and scope checking.
package urlcanon

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

type RejectReason string

const (
	RejectParseError    RejectReason = "parse_error"
	RejectMissingScheme RejectReason = "missing_scheme"
	RejectMissingHost   RejectReason = "missing_host"
	RejectSchemeBlocked RejectReason = "scheme_blocked"
)

// RejectError reports why a raw URL failed normalize.
type RejectError struct {
	Raw    string
	Reason RejectReason
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("urlcanon: reject %q: %s", e.Raw, e.Reason)
}

var blockedSchemes = map[string]bool{
	"javascript": true,
	"mailto":     true,
	"data":       true,
}

// Normalize implements C1's normalize(raw) -> url_or_reject.
//
//   - Requires a non-empty scheme in {http, https} and a non-empty host.
//   - Lowercases the host; path case is preserved.
//   - Strips a trailing slash from the path unless the path is empty;
//     an empty path becomes "/".
//   - Preserves query verbatim; drops the fragment.
func Normalize(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &RejectError{Raw: raw, Reason: RejectParseError}
	}

	scheme := strings.ToLower(u.Scheme)
	if blockedSchemes[scheme] {
		return "", &RejectError{Raw: raw, Reason: RejectSchemeBlocked}
	}
	if scheme != "http" && scheme != "https" {
		return "", &RejectError{Raw: raw, Reason: RejectMissingScheme}
	}
	if u.Host == "" {
		return "", &RejectError{Raw: raw, Reason: RejectMissingHost}
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Path == "":
		u.Path = "/"
	case u.Path != "/" && strings.HasSuffix(u.Path, "/"):
		u.Path = strings.TrimRight(u.Path, "/")
		if u.Path == "" {
			u.Path = "/"
		}
	}

	return u.String(), nil
}

// SameRegisteredDomain implements same_registered_domain(u, seed): true
// means u is within the scope anchored by seed. Subdomain boundaries do
// not stop traversal; only the registered domain (eTLD+1) is compared.
func SameRegisteredDomain(u, seed string) (bool, error) {
	uDomain, err := registeredDomain(u)
	if err != nil {
		return false, err
	}
	seedDomain, err := registeredDomain(seed)
	if err != nil {
		return false, err
	}
	return uDomain == seedDomain, nil
}

func registeredDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", &RejectError{Raw: rawURL, Reason: RejectParseError}
	}
	host := parsed.Hostname()
	if host == "" {
		return "", &RejectError{Raw: rawURL, Reason: RejectMissingHost}
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(strings.ToLower(host))
	if err != nil {
		// publicsuffix fails for bare IPs and single-label hosts
		// (e.g. "localhost"); fall back to the host itself so local/dev
		// targets remain usable instead of being rejected outright.
		return strings.ToLower(host), nil
	}
	return etld1, nil
}
