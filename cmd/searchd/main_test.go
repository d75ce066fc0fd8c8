package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codepr/searchcrawl/internal/docstore"
	"github.com/codepr/searchcrawl/internal/index"
	"github.com/codepr/searchcrawl/internal/search"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	store := docstore.New()
	id := store.Put("http://example.com/cats", "All About Cats", "cats are great pets and cats purr", "text/html", time.Now())
	_ = id

	idx := index.New()
	if err := idx.AddDocument(0, []string{"cat", "great", "pet", "cat", "purr"}); err != nil {
		t.Fatalf("AddDocument failed: %v", err)
	}
	if err := idx.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	return &server{
		service:     search.New(idx, store),
		indexLoaded: true,
	}
}

func TestHandleSearchReturnsResults(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/search?q=cats", nil)
	rec := httptest.NewRecorder()
	srv.handleSearch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("handleSearch failed: expected 200 got %d", rec.Code)
	}
	var resp search.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].URL != "http://example.com/cats" {
		t.Errorf("handleSearch failed: unexpected results %+v", resp.Results)
	}
}

func TestHandleSearchMissingQueryReturns400(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()
	srv.handleSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("handleSearch failed: expected 400 got %d", rec.Code)
	}
}

func TestHandleSearchInvalidPageReturns400(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/search?q=cats&page=0", nil)
	rec := httptest.NewRecorder()
	srv.handleSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("handleSearch failed: expected 400 got %d", rec.Code)
	}
}

func TestHandleStatsReportsDocCount(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.handleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("handleStats failed: expected 200 got %d", rec.Code)
	}
	var stats index.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding stats failed: %v", err)
	}
	if stats.DocCount != 1 {
		t.Errorf("handleStats failed: expected doc_count 1 got %d", stats.DocCount)
	}
}

func TestHandleHealthReportsIndexLoaded(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("handleHealth failed: expected 200 got %d", rec.Code)
	}
	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health failed: %v", err)
	}
	if body.Status != "healthy" || !body.IndexLoaded {
		t.Errorf("handleHealth failed: unexpected body %+v", body)
	}
}
