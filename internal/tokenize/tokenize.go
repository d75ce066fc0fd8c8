// Package tokenize turns raw text — crawled page content or a search
// query — into a normalized term list: lowercased, split on runs of
// characters that are neither letters nor digits, stopword-filtered, and stemmed with kljensen/snowball so
// that "crawling" and "crawl" index to the same term. This is the Query
// Processor collaborator from spec.md §4.8/§4.9, reused unchanged for
// document ingestion so index and query terms share one normalization
// path.
package tokenize

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

const language = "english"

// stopWords are filtered before stemming; a short, common list matching
// the scale of this project rather than a full stopword corpus.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "such": true, "that": true, "the": true, "their": true,
	"then": true, "there": true, "these": true, "they": true, "this": true,
	"to": true, "was": true, "will": true, "with": true,
}

// Tokens splits text into lowercase alphanumeric words, drops stopwords
// and words shorter than two characters, and stems each survivor.
func Tokens(text string) []string {
	words := splitWords(strings.ToLower(text))
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 || stopWords[w] {
			continue
		}
		stemmed, err := snowball.Stem(w, language, true)
		if err != nil || stemmed == "" {
			stemmed = w
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}

// splitWords breaks s on any run of non-letter, non-digit runes.
func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
