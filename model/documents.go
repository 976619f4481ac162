package model

import "errors"

var (
	// ErrDuplicateDocument rejects adding a document whose id is already known.
	ErrDuplicateDocument = errors.New("document already registered")

	// ErrUnknownDocument rejects selecting a document the registry doesn't hold.
	ErrUnknownDocument = errors.New("unknown document")
)

// Document is an uploaded PDF known to the backend, mapped 1:1 from the
// backend's {pdf_id, filename, chunks_count} record.
type Document struct {
	ID         string
	Filename   string
	ChunkCount int
}

// DocumentRegistry holds the uploaded documents and the current selection.
// Mutations are externally serialized (a single active mutator); failed
// operations never leave a partial mutation behind.
//
// Invariant, re-established after every mutation: the selection either
// resolves to a registered document or is empty.
type DocumentRegistry struct {
	docs     []Document
	index    map[string]int
	selected string
}

// NewDocumentRegistry returns an empty registry with no selection.
func NewDocumentRegistry() *DocumentRegistry {
	return &DocumentRegistry{index: make(map[string]int)}
}

// Add registers a document, keeping insertion order.
func (r *DocumentRegistry) Add(doc Document) error {
	if _, ok := r.index[doc.ID]; ok {
		return ErrDuplicateDocument
	}
	r.index[doc.ID] = len(r.docs)
	r.docs = append(r.docs, doc)
	return nil
}

// Remove drops the document with the given id, clearing the selection when it
// pointed at that id. Removing an absent id is a no-op, not an error.
func (r *DocumentRegistry) Remove(id string) {
	i, ok := r.index[id]
	if !ok {
		return
	}
	r.docs = append(r.docs[:i], r.docs[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.docs); j++ {
		r.index[r.docs[j].ID] = j
	}
	if r.selected == id {
		r.selected = ""
	}
}

// Select makes the given document the target for document-grounded chat.
func (r *DocumentRegistry) Select(id string) error {
	if _, ok := r.index[id]; !ok {
		return ErrUnknownDocument
	}
	r.selected = id
	return nil
}

// ClearSelection returns the registry to plain-chat mode.
func (r *DocumentRegistry) ClearSelection() {
	r.selected = ""
}

// Selected returns the currently selected document, if any.
func (r *DocumentRegistry) Selected() (Document, bool) {
	if r.selected == "" {
		return Document{}, false
	}
	return r.docs[r.index[r.selected]], true
}

// SelectedID returns the selected document id, or "" when nothing is selected.
func (r *DocumentRegistry) SelectedID() string {
	return r.selected
}

// List returns the documents in insertion order. The slice is a copy and safe
// to iterate repeatedly.
func (r *DocumentRegistry) List() []Document {
	out := make([]Document, len(r.docs))
	copy(out, r.docs)
	return out
}

// Len returns the number of registered documents.
func (r *DocumentRegistry) Len() int {
	return len(r.docs)
}

// Reset replaces the registry contents with docs, keeping insertion order of
// the new list. The selection survives only if it still resolves. Later
// duplicates of an id are dropped.
func (r *DocumentRegistry) Reset(docs []Document) {
	r.docs = r.docs[:0]
	r.index = make(map[string]int, len(docs))
	for _, doc := range docs {
		if _, ok := r.index[doc.ID]; ok {
			continue
		}
		r.index[doc.ID] = len(r.docs)
		r.docs = append(r.docs, doc)
	}
	if _, ok := r.index[r.selected]; !ok {
		r.selected = ""
	}
}
