// Package urlnorm normalizes and canonicalizes URLs for frontier identity
// and resolves discovered links against the page they were found on.
package urlnorm

import (
	"net/url"
	"sort"
	"strings"
)

// Canonical returns the identity form of a URL used for frontier
// de-duplication: scheme, lowercased host, port as written, path, and
// sorted query string, with any fragment stripped. Internationalized
// host names are not converted to punycode.
func Canonical(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = sortedQuery(u.RawQuery)
	return u.Scheme + "://" + u.Host + u.Path + queryPart(u.RawQuery), nil
}

func queryPart(q string) string {
	if q == "" {
		return ""
	}
	return "?" + q
}

// sortedQuery re-encodes a query string with its keys (and repeated
// values) in stable sorted order, so two URLs differing only in query
// parameter order canonicalize identically.
func sortedQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return raw
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(values))
	for _, k := range keys {
		vs := values[k]
		sort.Strings(vs)
		for _, v := range vs {
			parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(v))
		}
	}
	return strings.Join(parts, "&")
}

// Resolve joins a relative or absolute href against the page it was
// discovered on, returning the absolute URL.
func Resolve(pageURL string, href string) (*url.URL, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	return base.ResolveReference(ref), nil
}

// IsFetchableScheme reports whether a URL's scheme is one the crawler is
// willing to fetch. Only http and https are in scope.
func IsFetchableScheme(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// SameRegistrableHost approximates same-site comparison by comparing
// lowercased hostnames. The pack carries no public-suffix-list
// dependency, so this deliberately stops short of true eTLD+1 grouping.
func SameRegistrableHost(a, b *url.URL) bool {
	return strings.EqualFold(a.Hostname(), b.Hostname())
}

// LinkPriority computes the deterministic priority heuristic from
// spec.md §4.6: start at 0.5, +0.2 for same registrable host as the
// referring page, -0.05 per non-empty path segment, clamped to [0,1].
func LinkPriority(referrer, link *url.URL) float64 {
	priority := 0.5
	if SameRegistrableHost(referrer, link) {
		priority += 0.2
	}
	priority -= 0.05 * float64(nonEmptySegments(link.Path))
	if priority < 0.0 {
		priority = 0.0
	}
	if priority > 1.0 {
		priority = 1.0
	}
	return priority
}

func nonEmptySegments(path string) int {
	segments := strings.Split(path, "/")
	n := 0
	for _, s := range segments {
		if s != "" {
			n++
		}
	}
	return n
}
