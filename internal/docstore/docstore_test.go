package docstore

import (
	"path/filepath"
	"testing"
	"time"
)

func TestPutAssignsStableIDs(t *testing.T) {
	s := New()
	first := s.Put("http://a", "A", "content a", "text/html", time.Now())
	second := s.Put("http://b", "B", "content b", "text/html", time.Now())
	if first == second {
		t.Errorf("Put failed: expected distinct ids, got %d and %d", first, second)
	}
}

func TestGetReturnsStoredDocument(t *testing.T) {
	s := New()
	id := s.Put("http://a", "Title", "body", "text/html", time.Now())
	doc, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.URL != "http://a" || doc.Title != "Title" {
		t.Errorf("Get failed: unexpected document %+v", doc)
	}
}

func TestGetMissingReturnsErrNotFound(t *testing.T) {
	s := New()
	if _, err := s.Get(42); err != ErrNotFound {
		t.Errorf("Get failed: expected ErrNotFound got %v", err)
	}
}

func TestAllReturnsSnapshot(t *testing.T) {
	s := New()
	s.Put("http://a", "A", "x", "text/html", time.Now())
	s.Put("http://b", "B", "y", "text/html", time.Now())
	if len(s.All()) != 2 {
		t.Errorf("All failed: expected 2 documents got %d", len(s.All()))
	}
	if s.Count() != 2 {
		t.Errorf("Count failed: expected 2 got %d", s.Count())
	}
}

func TestSaveJSONLoadJSONRoundTrip(t *testing.T) {
	s := New()
	id := s.Put("http://a", "A", "content", "text/html", time.Now())

	path := filepath.Join(t.TempDir(), "docs.json")
	if err := s.SaveJSON(path); err != nil {
		t.Fatalf("SaveJSON failed: %v", err)
	}

	loaded, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	doc, err := loaded.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.URL != "http://a" || doc.Title != "A" {
		t.Errorf("LoadJSON failed: unexpected document %+v", doc)
	}

	nextID := loaded.Put("http://b", "B", "x", "text/html", time.Now())
	if nextID <= id {
		t.Errorf("LoadJSON failed: expected nextID to continue past %d, got %d", id, nextID)
	}
}
