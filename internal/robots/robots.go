// Package robots answers "may user-agent U fetch URL path P on host H?"
// caching parsed robots.txt documents per host. The caching and
// fail-open-on-error shape follows the teacher's
// CrawlingRules.GetRobotsTxtGroup (crawlingrules.go), generalized from a
// single base domain to an arbitrary number of hosts, with an explicit
// TTL and fail-closed-on-5xx behavior per spec.md §4.3.
package robots

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// cacheEntry holds a host's parsed robots rules alongside the time it was
// fetched and whether that fetch failed with a server error. A nil group
// means "allow everything", except when shortLived is set (a 5xx
// outcome), where it means "deny everything".
type cacheEntry struct {
	group      *robotstxt.Group
	fetchedAt  time.Time
	shortLived bool // 5xx outcome: cached briefly, then re-fetched
}

const (
	// defaultTTL is the normal cache lifetime for a fetched robots.txt.
	defaultTTL = 24 * time.Hour
	// serverErrorTTL is how long a deny-by-default 5xx outcome is cached
	// before robots.txt is re-fetched, per spec.md §4.3.
	serverErrorTTL = time.Hour
)

// httpGetter is the subset of *http.Client that Policy depends on, so
// tests can substitute a fake transport without a live server.
type httpGetter interface {
	Get(url string) (*http.Response, error)
}

// Policy fetches, parses, and caches robots.txt documents per host.
type Policy struct {
	client httpGetter
	ttl    time.Duration

	mutex     sync.Mutex
	cache     map[string]*cacheEntry
	inflight  map[string]*sync.WaitGroup // per-host in-flight fetch marker
}

// New creates a Policy using the given HTTP client (expected to carry
// whatever timeout/transport policy the fetcher uses) and TTL.
func New(client httpGetter, ttl time.Duration) *Policy {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Policy{
		client:   client,
		ttl:      ttl,
		cache:    make(map[string]*cacheEntry),
		inflight: make(map[string]*sync.WaitGroup),
	}
}

// MayFetch reports whether userAgent may fetch rawURL, fetching and
// caching scheme://host/robots.txt on first miss. Fetch failures and
// 4xx responses default to allow; 5xx responses default to deny with a
// short-lived cache entry.
func (p *Policy) MayFetch(rawURL, userAgent string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	entry := p.entryFor(u, userAgent)
	if entry.group == nil {
		return !entry.shortLived // shortLived+nil group means deny-by-default (5xx)
	}
	return entry.group.Test(u.RequestURI())
}

// CrawlDelay returns the robots.txt-supplied crawl-delay for rawURL's
// host, if the cached group specifies one. The boolean is false when no
// override applies, signaling callers to fall back to their own
// default politeness interval.
func (p *Policy) CrawlDelay(rawURL, userAgent string) (time.Duration, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, false
	}
	entry := p.entryFor(u, userAgent)
	if entry.group == nil || entry.group.CrawlDelay <= 0 {
		return 0, false
	}
	return entry.group.CrawlDelay, true
}

// entryFor returns the cache entry for a URL's host, fetching it if
// absent or expired. A per-host in-flight marker, held under the same
// mutex discipline as spec.md §5 requires, prevents duplicate
// concurrent fetches for the same host; the upstream fetch itself runs
// outside the lock.
func (p *Policy) entryFor(u *url.URL, userAgent string) *cacheEntry {
	host := u.Host

	p.mutex.Lock()
	if cached, ok := p.cache[host]; ok && p.fresh(cached) {
		p.mutex.Unlock()
		return cached
	}
	if wg, inflight := p.inflight[host]; inflight {
		p.mutex.Unlock()
		wg.Wait()
		p.mutex.Lock()
		cached := p.cache[host]
		p.mutex.Unlock()
		return cached
	}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	p.inflight[host] = wg
	p.mutex.Unlock()

	entry := p.fetch(u, userAgent)

	p.mutex.Lock()
	p.cache[host] = entry
	delete(p.inflight, host)
	p.mutex.Unlock()
	wg.Done()

	return entry
}

func (p *Policy) fresh(e *cacheEntry) bool {
	ttl := p.ttl
	if e.shortLived {
		ttl = serverErrorTTL
	}
	return time.Since(e.fetchedAt) < ttl
}

// fetch performs the actual robots.txt retrieval and parse. It never
// runs while p.mutex is held. The cache is keyed only by host, so the
// user-agent token used to select a rule group is whichever caller
// triggers the first fetch for that host; spec.md names a single
// configured crawler.user_agent, so in practice every caller agrees.
func (p *Policy) fetch(u *url.URL, userAgent string) *cacheEntry {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	now := time.Now()

	resp, err := p.client.Get(robotsURL)
	if err != nil {
		return &cacheEntry{group: nil, fetchedAt: now} // network failure: allow
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return &cacheEntry{group: nil, fetchedAt: now, shortLived: true} // deny, expires quickly
	case resp.StatusCode >= 400:
		return &cacheEntry{group: nil, fetchedAt: now} // 4xx: allow
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return &cacheEntry{group: nil, fetchedAt: now} // unparsable: allow
	}
	return &cacheEntry{group: data.FindGroup(userAgent), fetchedAt: now}
}
