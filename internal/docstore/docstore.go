// Package docstore is the document-store adapter: a key-addressed collection
// of structured records with get/set/partial-update/delete and a
// full-collection scan. The production implementation is Firestore; an
// in-memory implementation backs tests and local development.
package docstore

import "context"

// Snapshot is one scanned document.
type Snapshot interface {
	ID() string
	DataTo(out any) error
}

type Store interface {
	// Get decodes the document into out. Returns domain.ErrNotFound when the
	// document does not exist.
	Get(ctx context.Context, collection, id string, out any) error
	// Set creates or fully replaces the document.
	Set(ctx context.Context, collection, id string, doc any) error
	// Update merges the given top-level fields into an existing document.
	// Returns domain.ErrNotFound when the document does not exist.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document; deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Scan returns every document in the collection. Ordering is whatever the
	// underlying store yields.
	Scan(ctx context.Context, collection string) ([]Snapshot, error)
	// Close releases the underlying client.
	Close() error
}
