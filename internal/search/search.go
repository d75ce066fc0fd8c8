// Package search composes the inverted index and document store into
// ranked, paginated results with generated snippets, per spec.md §4.9.
package search

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/codepr/searchcrawl/internal/docstore"
	"github.com/codepr/searchcrawl/internal/index"
	"github.com/codepr/searchcrawl/internal/tokenize"
)

const (
	defaultOverFetchFactor = 5
	defaultSnippetLength   = 160
)

var (
	ErrInvalidPage  = errors.New("search: page must be >= 1")
	ErrInvalidLimit = errors.New("search: limit must be in [1,100]")
)

// Result is one ranked hit ready for presentation.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Response is the full answer to a query, including pagination metrics.
// Terms echoes the normalized query terms actually searched, matching
// the original Python search API's processed_query field.
type Response struct {
	Query          string        `json:"query"`
	Terms          []string      `json:"processed_query"`
	TotalResults   int           `json:"total_results"`
	Page           int           `json:"page"`
	Results        []Result      `json:"results"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// Service answers search queries against an index and document store.
type Service struct {
	index      *index.Index
	store      *docstore.Store
	overFetch  int
	snippetLen int
}

// New creates a Service over the given index and document store.
func New(idx *index.Index, store *docstore.Store) *Service {
	return &Service{
		index:      idx,
		store:      store,
		overFetch:  defaultOverFetchFactor,
		snippetLen: defaultSnippetLength,
	}
}

// Search normalizes query, asks the index for an over-fetched hit list,
// paginates it, and assembles result records with snippets. page is
// 1-indexed; limit bounds results per page.
func (s *Service) Search(query string, page, limit int) (Response, error) {
	start := time.Now()
	terms := tokenize.Tokens(query)
	if len(terms) == 0 {
		return Response{Query: query, Page: page, ProcessingTime: 0}, nil
	}

	hits, err := s.index.Search(terms, limit*s.overFetch)
	if err != nil {
		return Response{}, err
	}

	results := make([]Result, 0, limit)
	offset := (page - 1) * limit
	for i := offset; i < len(hits) && len(results) < limit; i++ {
		doc, err := s.store.Get(hits[i].DocID)
		if err != nil {
			continue
		}
		results = append(results, Result{
			Title:   doc.Title,
			URL:     doc.URL,
			Snippet: snippet(doc.Content, terms, s.snippetLen),
			Score:   roundTo4(hits[i].Score),
		})
	}

	return Response{
		Query:          query,
		Terms:          terms,
		TotalResults:   len(hits),
		Page:           page,
		Results:        results,
		ProcessingTime: time.Since(start),
	}, nil
}

// IndexStats reports the underlying index's document and term counts,
// for the search HTTP surface's /stats endpoint.
func (s *Service) IndexStats() index.Stats {
	return s.index.IndexStats()
}

// snippet locates the earliest case-insensitive occurrence of any query
// term in content and returns a window of up to maxLength characters
// centered on it, ellipsis-padded when truncated. With no match found it
// returns the content prefix.
func snippet(content string, terms []string, maxLength int) string {
	lower := strings.ToLower(content)
	earliest := -1
	for _, term := range terms {
		if idx := strings.Index(lower, term); idx >= 0 && (earliest < 0 || idx < earliest) {
			earliest = idx
		}
	}
	if earliest < 0 {
		return truncate(content, maxLength)
	}

	half := maxLength / 2
	start := earliest - half
	prefixEllipsis := start > 0
	if start < 0 {
		start = 0
		prefixEllipsis = false
	}
	end := start + maxLength
	suffixEllipsis := end < len(content)
	if end > len(content) {
		end = len(content)
	}

	window := content[start:end]
	if prefixEllipsis {
		window = "…" + window
	}
	if suffixEllipsis {
		window = window + "…"
	}
	return window
}

func truncate(content string, maxLength int) string {
	if len(content) <= maxLength {
		return content
	}
	return content[:maxLength] + "…"
}

func roundTo4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// ParsePagination validates page/limit query parameters per spec.md §6:
// page must be >= 1, limit in [1,100].
func ParsePagination(pageParam, limitParam string) (page, limit int, err error) {
	page = 1
	limit = 10
	if pageParam != "" {
		page, err = strconv.Atoi(pageParam)
		if err != nil || page < 1 {
			return 0, 0, ErrInvalidPage
		}
	}
	if limitParam != "" {
		limit, err = strconv.Atoi(limitParam)
		if err != nil || limit < 1 || limit > 100 {
			return 0, 0, ErrInvalidLimit
		}
	}
	return page, limit, nil
}
