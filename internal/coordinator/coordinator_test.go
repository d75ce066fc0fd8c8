package coordinator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codepr/searchcrawl/internal/docstore"
)

func linkedServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow:"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Home</title></head><body>
			<p>Welcome to the home page with some real content to index.</p>
			<a href="/about">about</a>
		</body></html>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>About</title></head><body>
			<p>This is the about page with different content entirely.</p>
		</body></html>`))
	})
	return httptest.NewServer(mux)
}

func TestRunCrawlsSeedAndDiscoversLinks(t *testing.T) {
	server := linkedServer()
	defer server.Close()

	store := docstore.New()
	c := New(Config{
		MaxQueueSize:   100,
		MaxConnections: 4,
		Timeout:        5 * time.Second,
		MaxWorkers:     2,
		MaxPages:       10,
		DelayMs:        0,
		UserAgent:      "test-agent",
	}, store)
	c.Seed([]string{server.URL + "/"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if c.PagesCrawled() < 1 {
		t.Errorf("Run failed: expected at least one page crawled, got %d", c.PagesCrawled())
	}
	if stats := c.Stats(); stats.PagesCrawled < 1 || stats.Elapsed <= 0 {
		t.Errorf("Stats failed: expected non-zero pages and elapsed time, got %+v", stats)
	}
	if store.Count() < 1 {
		t.Errorf("Run failed: expected at least one stored document, got %d", store.Count())
	}
}

func TestRunRespectsPageBudget(t *testing.T) {
	server := linkedServer()
	defer server.Close()

	store := docstore.New()
	c := New(Config{
		MaxQueueSize:   100,
		MaxConnections: 4,
		Timeout:        5 * time.Second,
		MaxWorkers:     1,
		MaxPages:       1,
		DelayMs:        0,
		UserAgent:      "test-agent",
	}, store)
	c.Seed([]string{server.URL + "/"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if c.PagesCrawled() != 1 {
		t.Errorf("Run failed: expected exactly 1 page, got %d", c.PagesCrawled())
	}
}

func TestRunTerminatesOnEmptyFrontier(t *testing.T) {
	store := docstore.New()
	c := New(Config{
		MaxQueueSize:   10,
		MaxConnections: 2,
		Timeout:        time.Second,
		MaxWorkers:     2,
		MaxPages:       100,
		DelayMs:        0,
		UserAgent:      "test-agent",
	}, store)
	// No seeds offered: frontier starts and stays empty.

	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background())
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run failed: expected termination on empty frontier within grace period")
	}
}

func TestIsHTMLAcceptsCharsetSuffix(t *testing.T) {
	if !isHTML("text/html; charset=utf-8") {
		t.Errorf("isHTML failed: expected true for %q", "text/html; charset=utf-8")
	}
	if isHTML("application/json") {
		t.Errorf("isHTML failed: expected false for %q", "application/json")
	}
}

func TestSeedSkipsInvalidURL(t *testing.T) {
	store := docstore.New()
	c := New(Config{MaxQueueSize: 10, MaxConnections: 1, Timeout: time.Second, MaxWorkers: 1, MaxPages: 1, UserAgent: "test-agent"}, store)
	c.Seed([]string{"://not-a-valid-url"})
	if c.frontier.Size() != 0 {
		t.Errorf("Seed failed: expected invalid seed to be dropped, got frontier size %d", c.frontier.Size())
	}
}
