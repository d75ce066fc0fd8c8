// Package coordinator runs the worker pool that drives a crawl from seed
// URLs to stored pages: frontier → robots → politeness → fetch → parse →
// dedup → store → link expansion, per spec.md §4.6. The worker-pool
// shape (N goroutines managed by an errgroup, a shared cancellable
// context) follows lukemcguire-vibraphone-template's Crawler.Run; the
// per-page pipeline steps follow the teacher's crawlPage
// (crawler/crawler.go), replacing its recursive channel-of-links design
// with the shared Frontier so priority ordering (not BFS/FIFO order)
// governs which URL is fetched next.
package coordinator

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/codepr/searchcrawl/internal/dedup"
	"github.com/codepr/searchcrawl/internal/docstore"
	"github.com/codepr/searchcrawl/internal/fetcher"
	"github.com/codepr/searchcrawl/internal/frontier"
	"github.com/codepr/searchcrawl/internal/htmlparse"
	"github.com/codepr/searchcrawl/internal/politeness"
	"github.com/codepr/searchcrawl/internal/robots"
	"github.com/codepr/searchcrawl/internal/urlnorm"
)

const (
	// emptyPollBackoff is how long an idle worker sleeps between frontier
	// polls before retrying.
	emptyPollBackoff = 50 * time.Millisecond
	// emptyPollGrace is how many consecutive empty observations a worker
	// tolerates before deciding the frontier is drained.
	emptyPollGrace = 20
)

// Config bundles the tunables spec.md §6 exposes through the crawler
// configuration file.
type Config struct {
	MaxQueueSize   int
	MaxConnections int
	Timeout        time.Duration
	MaxWorkers     int
	MaxPages       int
	DelayMs        int
	UserAgent      string
}

// Coordinator owns every collaborator and runs the worker pool.
type Coordinator struct {
	cfg        Config
	frontier   *frontier.Frontier
	politeness *politeness.Scheduler
	robots     *robots.Policy
	fetcher    *fetcher.Fetcher
	dedup      *dedup.Detector
	store      *docstore.Store
	logger     *log.Logger

	pagesCrawled int64
	startedAt    time.Time
}

// New wires every collaborator from cfg.
func New(cfg Config, store *docstore.Store) *Coordinator {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &Coordinator{
		cfg:        cfg,
		frontier:   frontier.New(cfg.MaxQueueSize),
		politeness: politeness.New(cfg.DelayMs),
		robots:     robots.New(httpClient, 0),
		fetcher:    fetcher.New(cfg.UserAgent, cfg.Timeout, 5, cfg.MaxConnections),
		dedup:      dedup.New(),
		store:      store,
		logger:     log.New(os.Stderr, "coordinator: ", log.LstdFlags),
		startedAt:  time.Now(),
	}
}

// Stats reports a point-in-time crawl summary, following the original
// CrawlerManager.get_crawl_statistics: pages crawled, elapsed time,
// crawl rate, and current queue size.
type Stats struct {
	PagesCrawled int64
	Elapsed      time.Duration
	PagesPerSec  float64
	QueueSize    int
}

// Stats returns the current crawl summary.
func (c *Coordinator) Stats() Stats {
	pages := atomic.LoadInt64(&c.pagesCrawled)
	elapsed := time.Since(c.startedAt)
	rate := 0.0
	if elapsed > 0 {
		rate = float64(pages) / elapsed.Seconds()
	}
	return Stats{
		PagesCrawled: pages,
		Elapsed:      elapsed,
		PagesPerSec:  rate,
		QueueSize:    c.frontier.Size(),
	}
}

// Seed offers the initial URLs to the frontier at maximum priority.
func (c *Coordinator) Seed(seeds []string) {
	for _, raw := range seeds {
		canon, err := urlnorm.Canonical(raw)
		if err != nil {
			c.logger.Printf("dropping invalid seed %q: %v", raw, err)
			continue
		}
		c.frontier.Add(canon, 1.0)
	}
}

// Run starts cfg.MaxWorkers workers and blocks until every worker
// terminates: either the page budget is reached or the frontier has been
// empty past its grace period on all workers. Run returns the first
// worker error, if any; individual fetch/parse/robots failures are
// logged and never propagate, per spec.md §7.
func (c *Coordinator) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < c.cfg.MaxWorkers; i++ {
		group.Go(func() error {
			return c.worker(groupCtx)
		})
	}
	return group.Wait()
}

// PagesCrawled reports the number of pages accepted into the document
// store so far.
func (c *Coordinator) PagesCrawled() int64 {
	return atomic.LoadInt64(&c.pagesCrawled)
}

func (c *Coordinator) worker(ctx context.Context) error {
	emptyObservations := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if atomic.LoadInt64(&c.pagesCrawled) >= int64(c.cfg.MaxPages) {
			return nil
		}

		item, ok := c.frontier.Next()
		if !ok {
			emptyObservations++
			if emptyObservations >= emptyPollGrace {
				return nil
			}
			select {
			case <-time.After(emptyPollBackoff):
			case <-ctx.Done():
				return nil
			}
			continue
		}
		emptyObservations = 0

		c.processURL(ctx, item)
	}
}

// processURL runs the full per-page pipeline for one frontier item. All
// failures are logged and absorbed here; nothing propagates to the
// worker loop, matching spec.md §7's "errors inside a worker loop are
// caught and logged, never terminating the worker".
func (c *Coordinator) processURL(ctx context.Context, item frontier.Item) {
	pageURL, err := url.Parse(item.URL)
	if err != nil {
		c.logger.Printf("skipping unparsable url %q: %v", item.URL, err)
		return
	}

	if !c.robots.MayFetch(item.URL, c.cfg.UserAgent) {
		c.logger.Printf("robots denied %s", item.URL)
		return
	}
	if delay, ok := c.robots.CrawlDelay(item.URL, c.cfg.UserAgent); ok {
		c.politeness.SetHostDelay(pageURL.Host, delay)
	}

	if err := c.politeness.Wait(ctx, pageURL.Host); err != nil {
		return
	}

	result := c.fetcher.Get(ctx, item.URL)
	if result.Failure != fetcher.FailureNone {
		c.logger.Printf("fetch failed for %s: %v", item.URL, result.Err)
		return
	}
	if !isHTML(result.ContentType) {
		c.logger.Printf("rejecting non-html content-type %q for %s", result.ContentType, item.URL)
		return
	}

	page, err := htmlparse.Parse(bytes.NewReader(result.Body))
	if err != nil || page.Text == "" {
		c.logger.Printf("parse failure for %s: %v", item.URL, err)
		return
	}

	if c.dedup.Seen(page.Text) {
		c.logger.Printf("duplicate content at %s", item.URL)
		return
	}

	c.store.Put(item.URL, page.Title, page.Text, result.ContentType, time.Now())
	if atomic.AddInt64(&c.pagesCrawled, 1) >= int64(c.cfg.MaxPages) {
		return
	}

	c.expandLinks(pageURL, page.Links)
}

// expandLinks resolves, canonicalizes, and scores each discovered link
// before offering it to the frontier, in source order.
func (c *Coordinator) expandLinks(referrer *url.URL, hrefs []string) {
	for _, href := range hrefs {
		resolved, err := urlnorm.Resolve(referrer.String(), href)
		if err != nil || !urlnorm.IsFetchableScheme(resolved) {
			continue
		}
		canon, err := urlnorm.Canonical(resolved.String())
		if err != nil {
			continue
		}
		priority := urlnorm.LinkPriority(referrer, resolved)
		c.frontier.Add(canon, priority)
	}
}

func isHTML(contentType string) bool {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType) == "text/html"
}
