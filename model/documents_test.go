package model

import (
	"errors"
	"testing"
)

func TestDocumentRegistryAdd(t *testing.T) {
	r := NewDocumentRegistry()

	if err := r.Add(Document{ID: "a", Filename: "a.pdf", ChunkCount: 3}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := r.Add(Document{ID: "a", Filename: "other.pdf"}); !errors.Is(err, ErrDuplicateDocument) {
		t.Errorf("duplicate Add() error = %v, want ErrDuplicateDocument", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after rejected duplicate, want 1", r.Len())
	}
	// The original entry must be untouched.
	if got := r.List()[0].Filename; got != "a.pdf" {
		t.Errorf("Filename = %q, want a.pdf", got)
	}
}

func TestDocumentRegistrySelection(t *testing.T) {
	r := NewDocumentRegistry()
	if err := r.Add(Document{ID: "a", Filename: "a.pdf"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Document{ID: "b", Filename: "b.pdf"}); err != nil {
		t.Fatal(err)
	}

	if err := r.Select("nope"); !errors.Is(err, ErrUnknownDocument) {
		t.Errorf("Select(unknown) error = %v, want ErrUnknownDocument", err)
	}
	if _, ok := r.Selected(); ok {
		t.Error("failed Select left a selection behind")
	}

	if err := r.Select("b"); err != nil {
		t.Fatalf("Select(b) error = %v", err)
	}
	if got := r.SelectedID(); got != "b" {
		t.Errorf("SelectedID() = %q, want b", got)
	}

	r.ClearSelection()
	if got := r.SelectedID(); got != "" {
		t.Errorf("SelectedID() = %q after ClearSelection, want empty", got)
	}
}

func TestDocumentRegistryRemoveClearsSelection(t *testing.T) {
	r := NewDocumentRegistry()
	for _, id := range []string{"a", "b", "c"} {
		if err := r.Add(Document{ID: id, Filename: id + ".pdf"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Select("b"); err != nil {
		t.Fatal(err)
	}

	r.Remove("b")

	if _, ok := r.Selected(); ok {
		t.Error("selection survived removal of the selected document")
	}
	// Remaining documents keep insertion order and stay addressable.
	list := r.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "c" {
		t.Errorf("List() = %v, want [a c]", list)
	}
	if err := r.Select("c"); err != nil {
		t.Errorf("Select(c) after removal error = %v", err)
	}

	// Removing an absent id is a no-op.
	r.Remove("b")
	if r.Len() != 2 {
		t.Errorf("Len() = %d after removing absent id, want 2", r.Len())
	}
}

func TestDocumentRegistryRemoveOtherKeepsSelection(t *testing.T) {
	r := NewDocumentRegistry()
	if err := r.Add(Document{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Document{ID: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Select("b"); err != nil {
		t.Fatal(err)
	}

	r.Remove("a")

	doc, ok := r.Selected()
	if !ok || doc.ID != "b" {
		t.Errorf("Selected() = %v, %v after removing other document", doc, ok)
	}
}

func TestDocumentRegistryReset(t *testing.T) {
	r := NewDocumentRegistry()
	if err := r.Add(Document{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Document{ID: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Select("a"); err != nil {
		t.Fatal(err)
	}

	t.Run("selection survives when still present", func(t *testing.T) {
		r.Reset([]Document{{ID: "b"}, {ID: "a"}, {ID: "b"}})
		if got := r.SelectedID(); got != "a" {
			t.Errorf("SelectedID() = %q, want a", got)
		}
		// Later duplicates are dropped.
		if r.Len() != 2 {
			t.Errorf("Len() = %d, want 2", r.Len())
		}
	})

	t.Run("selection cleared when gone", func(t *testing.T) {
		r.Reset([]Document{{ID: "b"}})
		if got := r.SelectedID(); got != "" {
			t.Errorf("SelectedID() = %q after selected doc dropped, want empty", got)
		}
	})
}
