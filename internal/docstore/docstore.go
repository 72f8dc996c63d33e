// Package docstore defines the collection-oriented persistence port used by
// the booking domain, with a Postgres-backed implementation and an in-memory
// one for tests.
package docstore

import (
	"context"
	"errors"
)

// Document is a schemaless record as it lives in a collection.
type Document map[string]any

var (
	ErrDocNotFound = errors.New("docstore: document not found")
	ErrDocExists   = errors.New("docstore: document already exists")
)

// Store is the document-store port. Implementations serialize conflicting
// writes at the document level; nothing spans more than one document
// atomically except Insert's create-if-absent.
type Store interface {
	// Get returns the document with the given id, or ErrDocNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set creates or fully replaces a document.
	Set(ctx context.Context, collection, id string, doc Document) error
	// Insert creates a document, failing with ErrDocExists if the id is taken.
	Insert(ctx context.Context, collection, id string, doc Document) error
	// Merge upserts individual fields into a document, creating it if absent.
	Merge(ctx context.Context, collection, id string, fields Document) error
	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// QueryByEquals returns all documents whose fields equal the given
	// filter values. A nil or empty filter returns the whole collection.
	QueryByEquals(ctx context.Context, collection string, filters map[string]any) ([]Document, error)
}
