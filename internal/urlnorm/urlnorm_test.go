package urlnorm

import (
	"net/url"
	"testing"
)

func TestCanonicalStripsFragmentAndSortsQuery(t *testing.T) {
	a, err := Canonical("https://Example.com/x/y?b=2&a=1#frag")
	if err != nil {
		t.Fatalf("Canonical failed: %v", err)
	}
	b, err := Canonical("https://example.com/x/y?a=1&b=2")
	if err != nil {
		t.Fatalf("Canonical failed: %v", err)
	}
	if a != b {
		t.Errorf("Canonical mismatch: %q != %q", a, b)
	}
}

func TestResolveRelative(t *testing.T) {
	u, err := Resolve("https://a.com/x/", "../y/z")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if u.String() != "https://a.com/y/z" {
		t.Errorf("Resolve failed: got %s", u.String())
	}
}

func TestLinkPriorityCalculation(t *testing.T) {
	ref, _ := url.Parse("https://a.com/x")
	link, _ := url.Parse("https://a.com/x/y/z")
	got := LinkPriority(ref, link)
	want := 0.55
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("LinkPriority failed: expected %v got %v", want, got)
	}
}

func TestLinkPriorityClampsToBounds(t *testing.T) {
	ref, _ := url.Parse("https://a.com/")
	deep, _ := url.Parse("https://other.com/a/b/c/d/e/f/g/h/i/j")
	if p := LinkPriority(ref, deep); p < 0.0 || p > 1.0 {
		t.Errorf("LinkPriority failed: %v out of bounds", p)
	}
}

func TestIsFetchableScheme(t *testing.T) {
	httpURL, _ := url.Parse("http://a.com")
	ftpURL, _ := url.Parse("ftp://a.com")
	if !IsFetchableScheme(httpURL) {
		t.Errorf("IsFetchableScheme failed: expected true for http")
	}
	if IsFetchableScheme(ftpURL) {
		t.Errorf("IsFetchableScheme failed: expected false for ftp")
	}
}
