// Package index implements the inverted index: term frequency ingestion,
// TF-IDF finalization, ranked search, and a versioned binary persistence
// format. The phase type-state (Ingesting → Finalized) and single-writer
// discipline follow spec.md §4.8; concurrency during ingestion uses the
// same single-mutex-no-I/O-under-lock rule as the teacher's memoryCache
// (cache.go). Once Finalized the index is read-only; Search and the stats
// observers still take the shared read lock, so concurrent searches do
// not block one another but reads are not lock-free.
package index

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Phase distinguishes whether the index still accepts documents or has
// been finalized for search.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseIngesting
	PhaseFinalized
)

// ErrEmptyTokens is returned by AddDocument when given no tokens.
var ErrEmptyTokens = errors.New("index: cannot add document with no tokens")

// ErrAlreadyFinalized is returned when AddDocument is called after
// Finalize.
var ErrAlreadyFinalized = errors.New("index: already finalized")

// ErrNotFinalized is returned by Search when called before Finalize.
var ErrNotFinalized = errors.New("index: not finalized")

// Posting is one document's score for a term. During ingestion Score
// holds term frequency; after Finalize it holds TF*IDF.
type Posting struct {
	DocID int
	Score float64
}

// Hit is one ranked search result.
type Hit struct {
	DocID int
	Score float64
}

// TermStats reports a single term's corpus-wide statistics, matching the
// original Python index's get_term_stats fields.
type TermStats struct {
	Term           string
	DocumentCount  int
	TotalFrequency int
	InverseDocFreq float64
}

// Stats reports index-wide counters.
type Stats struct {
	DocCount  int
	TermCount int
	Phase     Phase
}

// Index is the inverted index. It is safe for concurrent AddDocument
// calls during ingestion (single mutex, no I/O under lock) and for
// concurrent Search calls after Finalize, when it becomes read-only.
type Index struct {
	mutex sync.RWMutex
	phase Phase

	postings   map[string]map[int]float64
	df         map[string]int
	termFreq   map[string]int // total raw occurrences of a term across the corpus
	docLengths map[int]int
	docCount   int
}

// New creates an empty index in PhaseEmpty.
func New() *Index {
	return &Index{
		postings:   make(map[string]map[int]float64),
		df:         make(map[string]int),
		termFreq:   make(map[string]int),
		docLengths: make(map[int]int),
	}
}

// AddDocument ingests a document's tokens, computing per-term frequency
// and updating document frequency counts. Adding the same doc id twice
// fully replaces its prior contribution, per spec.md §4.8's requirement
// of one deterministic choice.
func (idx *Index) AddDocument(docID int, tokens []string) error {
	if len(tokens) == 0 {
		return ErrEmptyTokens
	}

	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	if idx.phase == PhaseFinalized {
		return ErrAlreadyFinalized
	}
	idx.phase = PhaseIngesting

	idx.removeDocumentLocked(docID)

	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}

	for term, count := range counts {
		postingsForTerm, ok := idx.postings[term]
		if !ok {
			postingsForTerm = make(map[int]float64)
			idx.postings[term] = postingsForTerm
		}
		idx.df[term]++
		idx.termFreq[term] += count
		postingsForTerm[docID] = float64(count) / float64(len(tokens))
	}
	idx.docLengths[docID] = len(tokens)
	idx.docCount++
	return nil
}

// removeDocumentLocked strips any prior contribution of docID from the
// postings and df maps. Called under idx.mutex.
func (idx *Index) removeDocumentLocked(docID int) {
	oldLen, ok := idx.docLengths[docID]
	if !ok {
		return
	}
	for term, postingsForTerm := range idx.postings {
		if tf, ok := postingsForTerm[docID]; ok {
			idx.termFreq[term] -= int(math.Round(tf * float64(oldLen)))
			delete(postingsForTerm, docID)
			idx.df[term]--
			if idx.df[term] <= 0 {
				delete(idx.df, term)
				delete(idx.postings, term)
				delete(idx.termFreq, term)
			}
		}
	}
	delete(idx.docLengths, docID)
	idx.docCount--
}

// Finalize converts every stored term frequency into TF*IDF using
// natural log, and switches the index to PhaseFinalized. Idempotent: a
// second call is a no-op returning nil, matching spec.md's "idempotent
// after the first call".
func (idx *Index) Finalize() error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	if idx.phase == PhaseFinalized {
		return nil
	}

	for term, postingsForTerm := range idx.postings {
		df := idx.df[term]
		if df == 0 {
			continue
		}
		idf := math.Log(float64(idx.docCount) / float64(df))
		for docID, tf := range postingsForTerm {
			postingsForTerm[docID] = tf * idf
		}
	}
	idx.phase = PhaseFinalized
	return nil
}

// Search returns the top `limit` (doc id, score) hits for terms, scored
// as the sum of each term's stored score for a document, descending by
// score with lower doc id breaking ties. Only valid once Finalized.
func (idx *Index) Search(terms []string, limit int) ([]Hit, error) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	if idx.phase != PhaseFinalized {
		return nil, ErrNotFinalized
	}
	if idx.docCount == 0 || len(terms) == 0 {
		return nil, nil
	}

	scores := make(map[int]float64)
	for _, term := range terms {
		postingsForTerm, ok := idx.postings[term]
		if !ok {
			continue
		}
		for docID, score := range postingsForTerm {
			scores[docID] += score
		}
	}

	hits := make([]Hit, 0, len(scores))
	for docID, score := range scores {
		hits = append(hits, Hit{DocID: docID, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// TermStats reports a term's document frequency and the IDF it would
// contribute given the current doc_count. Valid in any phase; df=0
// yields an IDF of 0 per spec.md's "when df=0 ... it is ignored" rule.
func (idx *Index) TermStats(term string) TermStats {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	df := idx.df[term]
	idf := 0.0
	if df > 0 && idx.docCount > 0 {
		idf = math.Log(float64(idx.docCount) / float64(df))
	}
	return TermStats{
		Term:           term,
		DocumentCount:  df,
		TotalFrequency: idx.termFreq[term],
		InverseDocFreq: idf,
	}
}

// IndexStats reports corpus-wide counters.
func (idx *Index) IndexStats() Stats {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return Stats{
		DocCount:  idx.docCount,
		TermCount: len(idx.postings),
		Phase:     idx.phase,
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseIngesting:
		return "ingesting"
	case PhaseFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}
