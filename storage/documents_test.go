package storage

import (
	"testing"
	"time"
)

func newTestCache(t *testing.T) *DocumentCache {
	t.Helper()
	cache, err := NewDocumentCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDocumentCache() error = %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestDocumentCachePutAndAll(t *testing.T) {
	cache := newTestCache(t)

	docs := []CachedDocument{
		{ID: "a", Filename: "a.pdf", ChunkCount: 3, AddedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Filename: "b.pdf", ChunkCount: 7, AddedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, doc := range docs {
		if err := cache.Put(doc); err != nil {
			t.Fatalf("Put(%s) error = %v", doc.ID, err)
		}
	}

	got, err := cache.All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("All() returned %d rows, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("order = [%s %s], want [a b]", got[0].ID, got[1].ID)
	}
	if got[1].Filename != "b.pdf" || got[1].ChunkCount != 7 {
		t.Errorf("row = %+v", got[1])
	}
}

func TestDocumentCacheUpsertPreservesAddedAt(t *testing.T) {
	cache := newTestCache(t)

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := cache.Put(CachedDocument{ID: "a", Filename: "a.pdf", ChunkCount: 0, AddedAt: first}); err != nil {
		t.Fatal(err)
	}
	// Re-put with an updated chunk count, as reconciliation does.
	if err := cache.Put(CachedDocument{ID: "a", Filename: "a.pdf", ChunkCount: 12, AddedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	got, err := cache.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("All() returned %d rows, want 1", len(got))
	}
	if got[0].ChunkCount != 12 {
		t.Errorf("ChunkCount = %d, want 12", got[0].ChunkCount)
	}
	if !got[0].AddedAt.Equal(first) {
		t.Errorf("AddedAt = %v, want original %v", got[0].AddedAt, first)
	}
}

func TestDocumentCacheDelete(t *testing.T) {
	cache := newTestCache(t)

	if err := cache.Put(CachedDocument{ID: "a", Filename: "a.pdf"}); err != nil {
		t.Fatal(err)
	}
	if err := cache.Delete("a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	// Absent id is a no-op.
	if err := cache.Delete("a"); err != nil {
		t.Fatalf("Delete() of absent id error = %v", err)
	}

	got, err := cache.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("All() returned %d rows after delete, want 0", len(got))
	}
}
