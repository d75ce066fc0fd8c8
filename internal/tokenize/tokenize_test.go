package tokenize

import (
	"reflect"
	"testing"
)

func TestTokensStemsAndLowercases(t *testing.T) {
	got := Tokens("Crawling the Crawler's Cats")
	want := []string{"crawl", "crawler", "cat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens failed: expected %v got %v", want, got)
	}
}

func TestTokensDropsStopwordsAndShortWords(t *testing.T) {
	got := Tokens("the cat is on a mat")
	want := []string{"cat", "mat"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens failed: expected %v got %v", want, got)
	}
}

func TestTokensEmptyInput(t *testing.T) {
	if got := Tokens(""); len(got) != 0 {
		t.Errorf("Tokens failed: expected empty slice got %v", got)
	}
}
