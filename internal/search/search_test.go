package search

import (
	"testing"
	"time"

	"github.com/codepr/searchcrawl/internal/docstore"
	"github.com/codepr/searchcrawl/internal/index"
	"github.com/codepr/searchcrawl/internal/tokenize"
)

func buildService(t *testing.T) *Service {
	t.Helper()
	idx := index.New()
	store := docstore.New()

	docs := []struct {
		url, title, content string
	}{
		{"http://a.example/1", "Cats and Dogs", "This article is about cats and dogs living together peacefully in the same house."},
		{"http://a.example/2", "Fish Tank Guide", "A guide to keeping a fish tank, covering cats as a potential hazard to the tank."},
	}
	for _, d := range docs {
		id := store.Put(d.url, d.title, d.content, "text/html", time.Now())
		if err := idx.AddDocument(id, tokenize.Tokens(d.content)); err != nil {
			t.Fatalf("AddDocument failed: %v", err)
		}
	}
	if err := idx.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	return New(idx, store)
}

func TestSearchReturnsRankedResults(t *testing.T) {
	s := buildService(t)
	resp, err := s.Search("cats", 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(resp.Results) == 0 {
		t.Fatalf("Search failed: expected at least one result")
	}
	if resp.Results[0].Title == "" || resp.Results[0].URL == "" {
		t.Errorf("Search failed: incomplete result %+v", resp.Results[0])
	}
	if len(resp.Terms) == 0 || resp.Terms[0] != "cat" {
		t.Errorf("Search failed: expected processed terms to echo stemmed query, got %v", resp.Terms)
	}
}

func TestSearchEmptyQueryReturnsEmptyResponse(t *testing.T) {
	s := buildService(t)
	resp, err := s.Search("", 1, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(resp.Results) != 0 || resp.TotalResults != 0 {
		t.Errorf("Search failed: expected empty response, got %+v", resp)
	}
}

func TestSnippetCentersOnMatchWithEllipses(t *testing.T) {
	content := "word " + stringsRepeat("padding ", 50) + "target " + stringsRepeat("padding ", 50)
	got := snippet(content, []string{"target"}, 40)
	if !contains(got, "target") {
		t.Errorf("snippet failed: expected window to contain match, got %q", got)
	}
	if []rune(got)[0] != '…' {
		t.Errorf("snippet failed: expected leading ellipsis, got %q", got)
	}
}

func TestSnippetFallsBackToPrefixWhenNoMatch(t *testing.T) {
	got := snippet("the quick brown fox", []string{"zzz"}, 10)
	if got != "the quick …" {
		t.Errorf("snippet failed: expected prefix fallback, got %q", got)
	}
}

func TestParsePaginationDefaults(t *testing.T) {
	page, limit, err := ParsePagination("", "")
	if err != nil || page != 1 || limit != 10 {
		t.Errorf("ParsePagination failed: expected (1,10,nil) got (%d,%d,%v)", page, limit, err)
	}
}

func TestParsePaginationRejectsOutOfRange(t *testing.T) {
	if _, _, err := ParsePagination("0", "10"); err != ErrInvalidPage {
		t.Errorf("ParsePagination failed: expected ErrInvalidPage got %v", err)
	}
	if _, _, err := ParsePagination("1", "101"); err != ErrInvalidLimit {
		t.Errorf("ParsePagination failed: expected ErrInvalidLimit got %v", err)
	}
}

func stringsRepeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
