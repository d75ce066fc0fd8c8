// Package dedup flags pages whose extracted text content has already been
// seen, independent of URL. Fingerprints are computed with blake3, the
// hashing choice rohmanhakim-docs-crawler's pkg/hashutil offers alongside
// sha256 for content digests; blake3 is the faster of the two and content
// fingerprinting here runs on every fetched page.
package dedup

import (
	"strings"
	"sync"
	"unicode"

	"lukechampine.com/blake3"
)

// Detector tracks content fingerprints already observed by the crawl. A
// single mutex guards the set, matching the single-lock-per-structure
// discipline used throughout this module; no I/O happens under the lock.
type Detector struct {
	mutex sync.Mutex
	seen  map[[32]byte]struct{}
}

// New creates an empty Detector.
func New() *Detector {
	return &Detector{seen: make(map[[32]byte]struct{})}
}

// Seen reports whether text's normalized fingerprint has already been
// recorded, recording it if not. Normalization collapses runs of
// whitespace and case-folds before hashing, per spec.md §4.4, so pages
// differing only in formatting or capitalization count as duplicates.
func (d *Detector) Seen(text string) bool {
	digest := fingerprint(text)

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if _, ok := d.seen[digest]; ok {
		return true
	}
	d.seen[digest] = struct{}{}
	return false
}

// Count returns the number of distinct fingerprints recorded so far.
func (d *Detector) Count() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.seen)
}

func fingerprint(text string) [32]byte {
	normalized := normalize(text)
	return blake3.Sum256([]byte(normalized))
}

// normalize lowercases and collapses interior whitespace so that two
// documents differing only in incidental formatting hash identically.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	lastWasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteByte(' ')
			}
			lastWasSpace = true
			continue
		}
		lastWasSpace = false
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSpace(b.String())
}
